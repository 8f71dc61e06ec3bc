// ABOUTME: Material records and list envelopes from the materials API
// ABOUTME: Includes category/map catalogs and the like counter response

package models

// File types assigned by the backend on upload
const (
	FileTypeImage = "image"
	FileTypeGIF   = "gif"
	FileTypeVideo = "video"
)

// Material is an uploaded media asset tied to a category and map
type Material struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category"`
	MapName       string    `json:"map_name,omitempty"`
	FilePath      string    `json:"file_path"`
	FileType      string    `json:"file_type"`
	FileSize      int64     `json:"file_size,omitempty"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty"`
	Tags          string    `json:"tags,omitempty"`
	Views         int       `json:"views"`
	Likes         int       `json:"likes"`
	UploaderID    int       `json:"uploader_id"`
	IsApproved    bool      `json:"is_approved"`
	CreatedAt     Timestamp `json:"created_at"`
	UpdatedAt     Timestamp `json:"updated_at"`
	Uploader      User      `json:"uploader"`
}

// MaterialPage is one page of a material listing
type MaterialPage struct {
	Materials []Material `json:"materials"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	Size      int        `json:"size"`
}

// Pages returns the number of pages needed for Total at the page size
func (p *MaterialPage) Pages() int {
	if p.Size <= 0 {
		return 0
	}
	return (p.Total + p.Size - 1) / p.Size
}

// Category is a selectable material category
type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CategoryList wraps /materials/categories/list
type CategoryList struct {
	Categories []Category `json:"categories"`
}

// MapList wraps /materials/maps/list
type MapList struct {
	Maps []string `json:"maps"`
}

// LikeResult is returned after liking a material
type LikeResult struct {
	Likes int `json:"likes"`
}

// MessageResult is the generic acknowledgement body of admin mutations
type MessageResult struct {
	Message string `json:"message"`
}
