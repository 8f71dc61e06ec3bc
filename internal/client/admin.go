// ABOUTME: Admin endpoints: statistics, moderation queue and user management
// ABOUTME: The backend enforces admin rights; 403 surfaces as ErrForbidden

package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/materialhub/materialhub-cli/internal/models"
)

// AdminAPI groups the /admin endpoints
type AdminAPI struct {
	c *Client
}

// Admin returns the admin endpoint group
func (c *Client) Admin() *AdminAPI {
	return &AdminAPI{c: c}
}

// Stats calls GET /admin/stats
func (a *AdminAPI) Stats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	if err := a.c.getJSON(ctx, "/admin/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// PendingMaterials calls GET /admin/materials/pending
func (a *AdminAPI) PendingMaterials(ctx context.Context, p PageParams) (*models.MaterialPage, error) {
	var page models.MaterialPage
	if err := a.c.getJSON(ctx, "/admin/materials/pending", p.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ApproveMaterial calls POST /admin/materials/{id}/approve
func (a *AdminAPI) ApproveMaterial(ctx context.Context, id int) (*models.MessageResult, error) {
	return a.message(ctx, http.MethodPost, fmt.Sprintf("/admin/materials/%d/approve", id))
}

// RejectMaterial calls POST /admin/materials/{id}/reject
func (a *AdminAPI) RejectMaterial(ctx context.Context, id int) (*models.MessageResult, error) {
	return a.message(ctx, http.MethodPost, fmt.Sprintf("/admin/materials/%d/reject", id))
}

// DeleteMaterial calls DELETE /admin/materials/{id}
func (a *AdminAPI) DeleteMaterial(ctx context.Context, id int) (*models.MessageResult, error) {
	return a.message(ctx, http.MethodDelete, fmt.Sprintf("/admin/materials/%d", id))
}

// Users calls GET /admin/users
func (a *AdminAPI) Users(ctx context.Context, p PageParams) ([]models.AdminUser, error) {
	var users []models.AdminUser
	if err := a.c.getJSON(ctx, "/admin/users", p.values(), &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ToggleUserActive calls POST /admin/users/{id}/toggle-active
func (a *AdminAPI) ToggleUserActive(ctx context.Context, id int) (*models.MessageResult, error) {
	return a.message(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/toggle-active", id))
}

// ToggleUserAdmin calls POST /admin/users/{id}/toggle-admin
func (a *AdminAPI) ToggleUserAdmin(ctx context.Context, id int) (*models.MessageResult, error) {
	return a.message(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/toggle-admin", id))
}

func (a *AdminAPI) message(ctx context.Context, method, path string) (*models.MessageResult, error) {
	var res models.MessageResult
	if err := a.c.sendJSON(ctx, method, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
