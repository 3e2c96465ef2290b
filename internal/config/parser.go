package config

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/example/flowmark/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	// Context for parsing
	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		// Handle Sections
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentTheme = nil

			if strings.HasPrefix(currentSection, "theme.") {
				themeName := strings.TrimPrefix(currentSection, "theme.")
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = themeName
				cfg.Themes[themeName] = currentTheme
			}
			continue
		}

		// Parse Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		// Remove quotes if present
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		if currentTheme != nil {
			// Parsing a theme definition
			if err := currentTheme.Set(key, value); err != nil {
				return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
			}
		} else if currentSection == "notify" {
			if err := setNotifyField(&cfg.Notify, key, value); err != nil {
				return nil, fmt.Errorf("error in section [notify]: %w", err)
			}
		} else if currentSection == "" {
			// Root section
			if err := setRootField(cfg, key, value); err != nil {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "color":
		cfg.Color = value
	case "history_limit":
		n, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		cfg.HistoryLimit = n
	case "blur_block":
		n, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		cfg.BlurBlock = n
	case "max_display":
		p, err := ParseSize(value)
		if err != nil {
			return fmt.Errorf("invalid size for key %s: %w", key, err)
		}
		cfg.MaxDisplay = p
	}
	return nil
}

func parsePositive(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("key %s must be positive, got %d", key, n)
	}
	return n, nil
}

// ParseSize parses WxH, such as 1280x800.
func ParseSize(s string) (image.Point, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return image.Point{}, fmt.Errorf("size %q is not WxH", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return image.Point{}, fmt.Errorf("size %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return image.Point{}, fmt.Errorf("size %q: %w", s, err)
	}
	if x < 0 || y < 0 {
		return image.Point{}, fmt.Errorf("size %q is negative", s)
	}
	return image.Pt(x, y), nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "capture":
		n.Capture = b
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}
