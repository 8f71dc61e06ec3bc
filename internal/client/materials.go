// ABOUTME: Materials endpoints: listing, detail, likes, uploads and catalogs
// ABOUTME: Thin one-call-per-endpoint wrappers with no client-side validation

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"

	"github.com/materialhub/materialhub-cli/internal/models"
)

// MaterialsAPI groups the /materials endpoints
type MaterialsAPI struct {
	c *Client
}

// Materials returns the materials endpoint group
func (c *Client) Materials() *MaterialsAPI {
	return &MaterialsAPI{c: c}
}

// UploadRequest is the multipart payload for POST /materials/upload
type UploadRequest struct {
	Title       string
	Category    string
	Description string
	MapName     string
	Tags        string
	FileName    string
	File        io.Reader
}

// List calls GET /materials
func (m *MaterialsAPI) List(ctx context.Context, p ListParams) (*models.MaterialPage, error) {
	var page models.MaterialPage
	if err := m.c.getJSON(ctx, "/materials", p.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get calls GET /materials/{id}
func (m *MaterialsAPI) Get(ctx context.Context, id int) (*models.Material, error) {
	var material models.Material
	if err := m.c.getJSON(ctx, fmt.Sprintf("/materials/%d", id), nil, &material); err != nil {
		return nil, err
	}
	return &material, nil
}

// Like calls POST /materials/{id}/like
func (m *MaterialsAPI) Like(ctx context.Context, id int) (*models.LikeResult, error) {
	var res models.LikeResult
	if err := m.c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/materials/%d/like", id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Upload calls POST /materials/upload. Scalar fields travel both as form
// fields and as query parameters; the backend reads them from the query.
func (m *MaterialsAPI) Upload(ctx context.Context, u UploadRequest) (*models.Material, error) {
	fields := url.Values{}
	set := func(k, v string) {
		if v != "" {
			fields.Set(k, v)
		}
	}
	set("title", u.Title)
	set("category", u.Category)
	set("description", u.Description)
	set("map_name", u.MapName)
	set("tags", u.Tags)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, k := range []string{"title", "category", "description", "map_name", "tags"} {
		if v := fields.Get(k); v != "" {
			if err := w.WriteField(k, v); err != nil {
				return nil, fmt.Errorf("failed to encode %s: %w", k, err)
			}
		}
	}
	if u.File != nil {
		part, err := w.CreateFormFile("file", path.Base(u.FileName))
		if err != nil {
			return nil, fmt.Errorf("failed to encode file: %w", err)
		}
		if _, err := io.Copy(part, u.File); err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode upload: %w", err)
	}

	var material models.Material
	err := m.c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/materials/upload",
		query:       fields,
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, &material)
	if err != nil {
		return nil, err
	}
	return &material, nil
}

// Categories calls GET /materials/categories/list
func (m *MaterialsAPI) Categories(ctx context.Context) ([]models.Category, error) {
	var list models.CategoryList
	if err := m.c.getJSON(ctx, "/materials/categories/list", nil, &list); err != nil {
		return nil, err
	}
	return list.Categories, nil
}

// Maps calls GET /materials/maps/list
func (m *MaterialsAPI) Maps(ctx context.Context) ([]string, error) {
	var list models.MapList
	if err := m.c.getJSON(ctx, "/materials/maps/list", nil, &list); err != nil {
		return nil, err
	}
	return list.Maps, nil
}

// FileURL returns the public URL of a stored file path under /uploads
func (c *Client) FileURL(filePath string) string {
	if filePath == "" {
		return ""
	}
	return c.baseURL + "/uploads/" + url.PathEscape(path.Base(filePath))
}
