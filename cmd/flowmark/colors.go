package main

import (
	"flag"
	"fmt"
	"image/color"

	"github.com/example/flowmark/internal/annotation"
	"github.com/example/flowmark/internal/theme"
)

type colorsCmd struct {
	*root
	fs      *flag.FlagSet
	noTheme bool
}

func (c *colorsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseColorsCmd(args []string, r *root) (*colorsCmd, error) {
	fs := flag.NewFlagSet("colors", flag.ExitOnError)
	c := &colorsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.BoolVar(&c.noTheme, "palette-only", false, "list only the annotation palette")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *colorsCmd) Run() error {
	def := annotation.DefaultColor()
	if c.root != nil && c.root.config != nil && c.root.config.Color != "" {
		if col, err := annotation.ParseColor(c.root.config.Color); err == nil {
			def = col
		}
	}
	fmt.Fprintln(stdout, "annotation palette (* marks the starting color):")
	for idx, entry := range annotation.Palette() {
		marker := " "
		if entry.Color == def {
			marker = "*"
		}
		fmt.Fprintf(stdout, "%s %2d: %-12s %s %s\n", marker, idx, entry.Name, annotation.FormatColor(entry.Color), swatch(entry.Color))
	}
	if c.noTheme {
		return nil
	}
	th := c.root.currentTheme()
	fmt.Fprintf(stdout, "\ntheme %s:\n", th.Name)
	for _, nc := range th.Colors() {
		fmt.Fprintf(stdout, "  %-22s %s %s\n", nc.Key, theme.FormatColor(nc.Color), swatch(nc.Color))
	}
	return nil
}

// swatch renders a two-cell block in c using a 24-bit ANSI background.
func swatch(c color.RGBA) string {
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", c.R, c.G, c.B)
}
