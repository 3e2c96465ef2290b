//go:build darwin

package platform

import (
	"os/exec"
	"strings"
)

// Notify posts to Notification Center through osascript. AppleScript's
// display notification has no image parameter, so IconPath is ignored.
func Notify(title, body string, opts Options) error {
	return exec.Command("osascript", "-e", appleScript(title, body)).Run()
}

func appleScript(title, body string) string {
	return "display notification " + asString(body) +
		" with title " + asString(title) +
		" subtitle " + asString(AppName)
}

// asString quotes s as an AppleScript string literal.
func asString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
