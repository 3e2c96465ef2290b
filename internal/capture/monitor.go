package capture

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

var errNoMonitors = errors.New("no monitors available")

// MonitorInfo describes one output in the desktop layout.
type MonitorInfo struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

// ListMonitors returns the connected outputs.
func ListMonitors() ([]MonitorInfo, error) {
	return listMonitorsFn()
}

// FindMonitor resolves a selector against monitors. Accepted forms are
// "primary", an index with optional '#' prefix, or a case-insensitive
// substring of the output name. An empty selector picks the first monitor.
func FindMonitor(monitors []MonitorInfo, selector string) (MonitorInfo, error) {
	if len(monitors) == 0 {
		return MonitorInfo{}, errNoMonitors
	}
	lower := strings.ToLower(strings.TrimSpace(selector))
	if lower == "" {
		return monitors[0], nil
	}
	if lower == "primary" {
		for _, mon := range monitors {
			if mon.Primary {
				return mon, nil
			}
		}
		return monitors[0], nil
	}
	if idx, err := strconv.Atoi(strings.TrimPrefix(lower, "#")); err == nil {
		if idx < 0 || idx >= len(monitors) {
			return MonitorInfo{}, fmt.Errorf("monitor index %d out of range", idx)
		}
		return monitors[idx], nil
	}
	for _, mon := range monitors {
		if strings.Contains(strings.ToLower(mon.Name), lower) {
			return mon, nil
		}
	}
	return MonitorInfo{}, fmt.Errorf("monitor %q not found", selector)
}
