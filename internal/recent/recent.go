// ABOUTME: Remembers media files recently picked for upload
// ABOUTME: Stored as JSON next to the session in the config directory

package recent

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// MaxUploads is the maximum number of paths kept
const MaxUploads = 8

// FileName is the JSON file inside the config directory
const FileName = "recent_uploads.json"

// Uploads is the list of recently uploaded local files, newest first
type Uploads struct {
	configDir string

	mu    sync.Mutex
	paths []string
}

type recentData struct {
	Files []string `json:"files"`
}

func New(configDir string) *Uploads {
	return &Uploads{configDir: configDir}
}

func (u *Uploads) configFile() string {
	return filepath.Join(u.configDir, FileName)
}

// Load reads the list from disk, dropping files that no longer exist. A
// missing or unparseable file yields an empty list.
func (u *Uploads) Load() ([]string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.loadLocked()
}

func (u *Uploads) loadLocked() ([]string, error) {
	data, err := os.ReadFile(u.configFile())
	if errors.Is(err, fs.ErrNotExist) {
		u.paths = []string{}
		return u.paths, nil
	}
	if err != nil {
		return nil, err
	}

	var rd recentData
	if err := json.Unmarshal(data, &rd); err != nil {
		u.paths = []string{}
		return u.paths, nil
	}

	u.paths = make([]string, 0, len(rd.Files))
	for _, p := range rd.Files {
		if _, err := os.Stat(p); err == nil {
			u.paths = append(u.paths, p)
		}
	}
	return append([]string(nil), u.paths...), nil
}

func (u *Uploads) saveLocked(paths []string) error {
	if err := os.MkdirAll(u.configDir, 0o700); err != nil {
		return err
	}
	if len(paths) > MaxUploads {
		paths = paths[:MaxUploads]
	}
	u.paths = paths

	data, err := json.MarshalIndent(recentData{Files: paths}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(u.configFile(), data, 0o600)
}

// Add records path as the most recent upload. Relative paths are made
// absolute so the list stays valid from any working directory.
func (u *Uploads) Add(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.paths == nil {
		if _, err := u.loadLocked(); err != nil {
			u.paths = []string{}
		}
	}

	next := make([]string, 0, len(u.paths)+1)
	next = append(next, path)
	for _, p := range u.paths {
		if p != path {
			next = append(next, p)
		}
	}
	return u.saveLocked(next)
}

// List returns the cached list, loading it on first use
func (u *Uploads) List() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.paths == nil {
		_, _ = u.loadLocked()
	}
	return append([]string(nil), u.paths...)
}
