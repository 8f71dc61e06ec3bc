// ABOUTME: User records mirrored from the materials backend
// ABOUTME: Shared by the API client, the session store, and the route guard

package models

// User is the account record returned by /users/me, login, and register
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt Timestamp `json:"created_at"`
}

// AdminUser is a user row in the admin user listing
type AdminUser struct {
	User
	MaterialsCount int `json:"materials_count"`
}
