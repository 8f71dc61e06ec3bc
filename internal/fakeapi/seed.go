// ABOUTME: Demo data for running the fake backend interactively
// ABOUTME: One admin, one member and a handful of approved and pending materials

package fakeapi

import "github.com/materialhub/materialhub-cli/internal/models"

// Demo credentials created by Seed
const (
	DemoAdmin         = "admin"
	DemoAdminPassword = "admin123"
	DemoUser          = "alice"
	DemoUserPassword  = "password"
)

// Seed fills the server with demo users and materials
func (s *Server) Seed() {
	admin := s.AddUser(DemoAdmin, DemoAdminPassword, true)
	alice := s.AddUser(DemoUser, DemoUserPassword, false)

	seed := []models.Material{
		{Title: "Window smoke from T spawn", Category: "smoke", MapName: "mirage", FileType: models.FileTypeVideo, FilePath: "uploads/window-smoke.mp4", Tags: "t-side,execute", Likes: 12, Views: 140, UploaderID: admin.ID, IsApproved: true},
		{Title: "A site popflash", Category: "flash", MapName: "mirage", FileType: models.FileTypeGIF, FilePath: "uploads/a-pop.gif", Likes: 5, Views: 61, UploaderID: alice.ID, IsApproved: true},
		{Title: "Banana molotov", Category: "molotov", MapName: "inferno", FileType: models.FileTypeImage, FilePath: "uploads/banana-molly.png", Likes: 8, Views: 90, UploaderID: alice.ID, IsApproved: true},
		{Title: "Long doors HE", Category: "he", MapName: "dust2", FileType: models.FileTypeImage, FilePath: "uploads/long-he.jpg", UploaderID: alice.ID},
		{Title: "Xbox smoke", Category: "smoke", MapName: "dust2", Description: "Jump-throw from T spawn", FileType: models.FileTypeVideo, FilePath: "uploads/xbox.webm", UploaderID: alice.ID},
	}
	for _, m := range seed {
		s.AddMaterial(m)
	}
}
