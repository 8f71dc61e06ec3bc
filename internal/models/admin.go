// ABOUTME: Admin dashboard statistics model
// ABOUTME: Accepts both the backend's snake_case and the camelCase field names

package models

import "encoding/json"

// AdminStats summarizes moderation state for the admin dashboard
type AdminStats struct {
	TotalMaterials    int `json:"total_materials"`
	ApprovedMaterials int `json:"approved_materials"`
	PendingMaterials  int `json:"pending_materials"`
	TotalUsers        int `json:"total_users"`
	ActiveUsers       int `json:"active_users"`
}

// UnmarshalJSON decodes either naming convention; snake_case wins when both appear
func (s *AdminStats) UnmarshalJSON(data []byte) error {
	var raw struct {
		TotalMaterials    *int `json:"total_materials"`
		ApprovedMaterials *int `json:"approved_materials"`
		PendingMaterials  *int `json:"pending_materials"`
		TotalUsers        *int `json:"total_users"`
		ActiveUsers       *int `json:"active_users"`

		TotalMaterialsCamel    *int `json:"totalMaterials"`
		ApprovedMaterialsCamel *int `json:"approvedMaterials"`
		PendingMaterialsCamel  *int `json:"pendingMaterials"`
		TotalUsersCamel        *int `json:"totalUsers"`
		ActiveUsersCamel       *int `json:"activeUsers"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.TotalMaterials = firstInt(raw.TotalMaterials, raw.TotalMaterialsCamel)
	s.ApprovedMaterials = firstInt(raw.ApprovedMaterials, raw.ApprovedMaterialsCamel)
	s.PendingMaterials = firstInt(raw.PendingMaterials, raw.PendingMaterialsCamel)
	s.TotalUsers = firstInt(raw.TotalUsers, raw.TotalUsersCamel)
	s.ActiveUsers = firstInt(raw.ActiveUsers, raw.ActiveUsersCamel)
	return nil
}

func firstInt(values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}
