package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/example/flowmark/internal/annotation"
	"github.com/example/flowmark/internal/canvas"
	"github.com/example/flowmark/internal/config"
	"github.com/example/flowmark/internal/notify"
	"github.com/example/flowmark/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs            *flag.FlagSet
	program       string
	notifier      *notify.Notifier
	config        *config.Config
	captureAlerts bool
	saveAlerts    bool
	copyAlerts    bool
	themeName     string
	activeTheme   *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:       program,
		notifier:      r.notifier,
		config:        r.config,
		captureAlerts: r.captureAlerts,
		saveAlerts:    r.saveAlerts,
		copyAlerts:    r.copyAlerts,
		themeName:     r.themeName,
		activeTheme:   r.activeTheme,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("flowmark", flag.ExitOnError),
		program:  "flowmark",
		notifier: notify.New(prefs),
		config:   cfg,
	}
	r.fs.BoolVar(&r.captureAlerts, "notify-capture", cfg.Notify.Capture, "show a desktop notification after capturing a screenshot")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")

	// Precedence: CLI > Env > Config > Default. The flag defaults to empty so
	// Run can tell whether it was given.
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (default, dark, a theme file or a [theme.<name>] config section)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventCapture, r.captureAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.activeTheme = r.resolveTheme(theme.NewLoader())

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]
	sub := r.subcommand(cmdName)

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, sub)
	case "apply":
		cmd, err = parseApplyCmd(subArgs, sub)
	case "draw":
		cmd, err = parseDrawCmd(subArgs, sub)
	case "capture":
		cmd, err = parseCaptureCmd(subArgs, sub)
	case "config":
		cmd, err = parseConfigCmd(subArgs, sub)
	case "colors":
		cmd, err = parseColorsCmd(subArgs, sub)
	case "version":
		cmd, err = parseVersionCmd(subArgs, sub)
	default:
		err = usageErrorf(r, "unknown command %q", cmdName)
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// selectedTheme picks the theme name by precedence: flag, FLOWMARK_THEME,
// config.
func (r *root) selectedTheme() string {
	if r.themeName != "" {
		return r.themeName
	}
	if env := strings.TrimSpace(os.Getenv("FLOWMARK_THEME")); env != "" {
		return env
	}
	if r.config != nil {
		return r.config.Theme
	}
	return ""
}

func (r *root) resolveTheme(loader *theme.Loader) *theme.Theme {
	name := r.selectedTheme()
	if r.config != nil {
		if t, ok := r.config.Themes[name]; ok {
			return t
		}
	}
	t, err := loader.Load(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", name, err)
		return theme.Default()
	}
	return t
}

func (r *root) currentTheme() *theme.Theme {
	if r == nil || r.activeTheme == nil {
		return theme.Default()
	}
	return r.activeTheme
}

// canvasOptions turns the editor settings from the config file into
// controller options.
func (r *root) canvasOptions() ([]canvas.Option, error) {
	if r == nil || r.config == nil {
		return nil, nil
	}
	cfg := r.config
	var opts []canvas.Option
	if cfg.Color != "" {
		col, err := annotation.ParseColor(cfg.Color)
		if err != nil {
			return nil, fmt.Errorf("config color: %w", err)
		}
		opts = append(opts, canvas.WithColor(col))
	}
	if cfg.HistoryLimit > 0 {
		opts = append(opts, canvas.WithHistoryCapacity(cfg.HistoryLimit))
	}
	if cfg.BlurBlock > 0 {
		opts = append(opts, canvas.WithBlockSize(cfg.BlurBlock))
	}
	return opts, nil
}

func (r *root) saveDir() string {
	if r != nil && r.config != nil && r.config.SaveDir != "" {
		return r.config.SaveDir
	}
	dir, err := defaultDirFn()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; saving to the current directory\n", err)
		return "."
	}
	return dir
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (r *root) notifyCapture(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Capture(detail, img)
}

func (r *root) notifySave(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path)
}

func (r *root) notifyCopy(detail string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(detail)
}
