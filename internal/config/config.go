package config

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/example/flowmark/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Capture bool
	Save    bool
	Copy    bool
}

// Config holds the application configuration.
type Config struct {
	Theme        string
	SaveDir      string
	Color        string      // Initial annotation colour name or #RRGGBB
	HistoryLimit int         // Undo depth; 0 uses the editor default
	BlurBlock    int         // Pixelation tile edge; 0 uses the editor default
	MaxDisplay   image.Point // Largest preview size; zero axes fit the window
	Notify       Notify
	Themes       map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:  "", // Default to empty to allow fallback to Env/Default
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.Color != "" {
		fmt.Fprintf(&sb, "color = %s\n", c.Color)
	}
	if c.HistoryLimit > 0 {
		fmt.Fprintf(&sb, "history_limit = %d\n", c.HistoryLimit)
	}
	if c.BlurBlock > 0 {
		fmt.Fprintf(&sb, "blur_block = %d\n", c.BlurBlock)
	}
	if c.MaxDisplay != (image.Point{}) {
		fmt.Fprintf(&sb, "max_display = %s\n", FormatSize(c.MaxDisplay))
	}
	sb.WriteString("\n")

	// Notify section
	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "capture = %v\n", c.Notify.Capture)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = c.Themes[name].Write(&sb)
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatSize renders p as WxH.
func FormatSize(p image.Point) string {
	return fmt.Sprintf("%dx%d", p.X, p.Y)
}
