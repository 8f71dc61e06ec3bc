// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

// EnvNerdFonts forces Nerd Font icons on (1/true) or off
const EnvNerdFonts = "MATERIALHUB_NERD_FONTS"

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	if env := os.Getenv(EnvNerdFonts); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	// Terminals that usually ship with a patched font
	nerdFontTerminals := []string{
		"iTerm.app",
		"alacritty",
		"WezTerm",
		"kitty",
		"ghostty",
	}

	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	return os.Getenv("NERD_FONTS") == "1"
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// Media
	Image = Icon{"󰋩", "▣"} // nf-md-image
	GIF   = Icon{"󰵸", "◎"} // nf-md-file_gif_box
	Video = Icon{"󰕧", "▶"} // nf-md-video
	File  = Icon{"󰈔", "□"} // nf-md-file

	// People
	User  = Icon{"󰀄", "●"} // nf-md-account
	Users = Icon{"󰡉", "◉"} // nf-md-account_group
	Admin = Icon{"󰒃", "⛊"} // nf-md-shield_check

	// Status indicators
	CheckOK  = Icon{"", "✓"}  // nf-oct-check_circle
	Warning  = Icon{"", "⚠"}  // nf-oct-alert
	Critical = Icon{"", "✗"}  // nf-oct-x_circle
	Pending  = Icon{"󰔟", "◔"} // nf-md-timer_sand

	// Actions
	Browse = Icon{"󰉋", "≡"} // nf-md-folder
	Upload = Icon{"󰕒", "↑"} // nf-md-upload
	Like   = Icon{"󰋑", "♥"} // nf-md-heart
	Login  = Icon{"󰍂", "→"} // nf-md-login
	Logout = Icon{"󰍃", "←"} // nf-md-logout
	Quit   = Icon{"󰗼", "×"} // nf-md-exit_to_app

	// Application
	App = Icon{"󰉏", "◈"} // nf-md-folder_multiple_image
)

// ForFileType returns the icon for a backend file type
func ForFileType(fileType string) Icon {
	switch fileType {
	case "image":
		return Image
	case "gif":
		return GIF
	case "video":
		return Video
	default:
		return File
	}
}
