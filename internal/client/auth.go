// ABOUTME: User endpoints: login, registration and profile lookups
// ABOUTME: The client never stores the returned token; callers hand it to the session

package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/materialhub/materialhub-cli/internal/models"
)

// AuthAPI groups the /users endpoints
type AuthAPI struct {
	c *Client
}

// Auth returns the user endpoint group
func (c *Client) Auth() *AuthAPI {
	return &AuthAPI{c: c}
}

// Login calls POST /users/login
func (a *AuthAPI) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	if err := a.c.sendJSON(ctx, http.MethodPost, "/users/login", req, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// Register calls POST /users/register and returns the created user
func (a *AuthAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var user models.User
	if err := a.c.sendJSON(ctx, http.MethodPost, "/users/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me calls GET /users/me
func (a *AuthAPI) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := a.c.getJSON(ctx, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// User calls GET /users/{id}
func (a *AuthAPI) User(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := a.c.getJSON(ctx, fmt.Sprintf("/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
