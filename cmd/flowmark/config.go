package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/flowmark/internal/config"
)

type configCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	c := &configCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	switch fs.Arg(0) {
	case "print", "save":
	default:
		return nil, usageErrorf(c, "unknown config command: %s", fs.Arg(0))
	}
	return c, nil
}

func (c *configCmd) Run() error {
	switch c.fs.Arg(0) {
	case "print":
		return c.runPrint()
	case "save":
		return c.runSave()
	default:
		return &UsageError{of: c}
	}
}

func (c *configCmd) runPrint() error {
	fmt.Fprint(stdout, c.effective().String())
	return nil
}

// effective is the loaded configuration with the global flags applied.
func (c *configCmd) effective() *config.Config {
	cfg := *c.root.config
	cfg.Notify = config.Notify{
		Capture: c.root.captureAlerts,
		Save:    c.root.saveAlerts,
		Copy:    c.root.copyAlerts,
	}
	if c.root.themeName != "" {
		cfg.Theme = c.root.themeName
	}
	return &cfg
}

func (c *configCmd) runSave() error {
	path, err := config.NewLoader(version, configPathOverride).SavePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(c.effective().String()), 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Configuration saved to %s\n", path)
	return nil
}
