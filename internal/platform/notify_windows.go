//go:build windows

package platform

import (
	"encoding/xml"
	"os/exec"
	"strings"
)

// Notify shows a toast by handing a ToastGeneric document to the WinRT
// notification manager through PowerShell.
func Notify(title, body string, opts Options) error {
	script := `[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=WindowsRuntime] > $null; ` +
		`[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType=WindowsRuntime] > $null; ` +
		`$doc = New-Object Windows.Data.Xml.Dom.XmlDocument; ` +
		`$doc.LoadXml(` + psQuote(toastXML(title, body, opts.IconPath)) + `); ` +
		`[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(` + psQuote(AppName) + `).Show([Windows.UI.Notifications.ToastNotification]::new($doc));`
	return exec.Command("powershell.exe", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

func toastXML(title, body, icon string) string {
	var sb strings.Builder
	sb.WriteString(`<toast><visual><binding template="ToastGeneric">`)
	sb.WriteString("<text>" + xmlEscape(title) + "</text>")
	sb.WriteString("<text>" + xmlEscape(body) + "</text>")
	if icon != "" {
		sb.WriteString(`<image placement="hero" src="` + xmlEscape(icon) + `"/>`)
	}
	sb.WriteString(`</binding></visual></toast>`)
	return sb.String()
}

func xmlEscape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
