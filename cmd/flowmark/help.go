package main

import (
	"bytes"
	"embed"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": flagInfos,
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

func flagInfos(fs *flag.FlagSet) []flagInfo {
	result := []flagInfo{}
	if fs == nil {
		return result
	}
	fs.VisitAll(func(f *flag.Flag) {
		result = append(result, flagInfo{f.Name, f.DefValue, f.Usage})
	})
	return result
}

// HelpData is implemented by every command that can render its usage.
type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

// UsageError carries the command whose help should be shown.
type UsageError struct {
	of  HelpData
	msg string
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	if e.msg != "" {
		return e.msg + "\n\n" + help
	}
	return help
}

func usageErrorf(of HelpData, format string, args ...any) *UsageError {
	return &UsageError{of: of, msg: fmt.Sprintf(format, args...)}
}

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	if err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), e.of); err != nil {
		log.Printf("error rendering help template: %v", err)
		return "", err
	}
	return buf.String(), nil
}

// usageFunc adapts a command to flag.FlagSet.Usage.
func usageFunc(of HelpData) func() {
	return func() {
		fmt.Fprint(os.Stderr, (&UsageError{of: of}).Error())
	}
}

func (r *root) Template() string { return "root.txt" }

func (a *annotateCmd) Template() string { return "annotate.txt" }

func (a *applyCmd) Template() string { return "apply.txt" }

func (d *drawCmd) Template() string { return "draw.txt" }

func (c *captureCmd) Template() string { return "capture.txt" }

func (c *configCmd) Template() string { return "config.txt" }

func (c *colorsCmd) Template() string { return "colors.txt" }

func (v *versionCmd) Template() string { return "version.txt" }
