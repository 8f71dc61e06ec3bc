// ABOUTME: Shared output helpers for human and JSON rendering
// ABOUTME: Keeps table layout consistent across commands

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/materialhub/materialhub-cli/internal/models"
)

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}

// newTable returns a tabwriter; callers must Flush
func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// formatMaterialsTable renders one page of materials
func formatMaterialsTable(w io.Writer, page *models.MaterialPage) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tMAP\tTYPE\tLIKES\tVIEWS\tUPLOADER")
	for _, m := range page.Materials {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			m.ID, truncate(m.Title, 40), m.Category, dash(m.MapName), m.FileType, m.Likes, m.Views, m.Uploader.Username)
	}
	tw.Flush()
	fmt.Fprintf(w, "\nPage %d of %d (%d total)\n", page.Page, max(page.Pages(), 1), page.Total)
}

// formatMaterialHuman renders a single material
func formatMaterialHuman(m *models.Material, fileURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:          %d\n", m.ID)
	fmt.Fprintf(&b, "Title:       %s\n", m.Title)
	if m.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", m.Description)
	}
	fmt.Fprintf(&b, "Category:    %s\n", m.Category)
	fmt.Fprintf(&b, "Map:         %s\n", dash(m.MapName))
	fmt.Fprintf(&b, "Type:        %s\n", m.FileType)
	if m.Tags != "" {
		fmt.Fprintf(&b, "Tags:        %s\n", m.Tags)
	}
	fmt.Fprintf(&b, "Likes:       %d\n", m.Likes)
	fmt.Fprintf(&b, "Views:       %d\n", m.Views)
	fmt.Fprintf(&b, "Uploader:    %s\n", m.Uploader.Username)
	fmt.Fprintf(&b, "Approved:    %s\n", yesNo(m.IsApproved))
	if !m.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Created:     %s\n", m.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "File:        %s", fileURL)
	return b.String()
}

// formatUserHuman renders a user profile
func formatUserHuman(u *models.User) string {
	role := "member"
	if u.IsAdmin {
		role = "admin"
	}
	return fmt.Sprintf(`User:   %s (id %d)
Email:  %s
Role:   %s
Active: %s`, u.Username, u.ID, u.Email, role, yesNo(u.IsActive))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
