// ABOUTME: Advisory checks for files about to be uploaded
// ABOUTME: Mirrors the backend's accepted extensions and size limit; the backend still decides

package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/materialhub/materialhub-cli/internal/models"
)

// MaxFileSize is the backend's upload limit (50 MB)
const MaxFileSize = 50 << 20

// extensions maps accepted file extensions to the file type the backend assigns
var extensions = map[string]string{
	".jpg":  models.FileTypeImage,
	".jpeg": models.FileTypeImage,
	".png":  models.FileTypeImage,
	".gif":  models.FileTypeGIF,
	".mp4":  models.FileTypeVideo,
	".mov":  models.FileTypeVideo,
	".avi":  models.FileTypeVideo,
	".webm": models.FileTypeVideo,
}

// Info describes a local file considered for upload
type Info struct {
	Path     string
	Name     string
	Size     int64
	FileType string // empty when the extension is not accepted
	Warnings []string
}

// OK reports whether no advisory check failed
func (i Info) OK() bool {
	return len(i.Warnings) == 0
}

// AllowedExtensions returns the accepted extensions, sorted
func AllowedExtensions() []string {
	out := make([]string, 0, len(extensions))
	for ext := range extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// TypeOf returns the backend file type for name, or "" if not accepted
func TypeOf(name string) string {
	return extensions[strings.ToLower(filepath.Ext(name))]
}

// Inspect stats path and runs the advisory checks. Only a missing or
// unreadable file is an error.
func Inspect(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if st.IsDir() {
		return Info{}, fmt.Errorf("%s is a directory", path)
	}

	info := Info{
		Path:     path,
		Name:     filepath.Base(path),
		Size:     st.Size(),
		FileType: TypeOf(path),
	}
	if info.FileType == "" {
		info.Warnings = append(info.Warnings,
			fmt.Sprintf("extension %q is not accepted (allowed: %s)", filepath.Ext(path), strings.Join(AllowedExtensions(), " ")))
	}
	if info.Size > MaxFileSize {
		info.Warnings = append(info.Warnings,
			fmt.Sprintf("file is %s, over the %s limit", HumanSize(info.Size), HumanSize(MaxFileSize)))
	}
	return info, nil
}

// HumanSize formats a byte count with binary units
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
