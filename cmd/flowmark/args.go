package main

import (
	"flag"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// splitArgs separates the flags fs knows about from positional arguments so
// flags may follow the positionals, as in "draw arrow 1 2 3 4 -color blue".
func splitArgs(fs *flag.FlagSet, args []string) ([]string, []string, error) {
	var flags []string
	var positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" || isNumber(arg) {
			positionals = append(positionals, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		parts := strings.SplitN(name, "=", 2)
		f := fs.Lookup(parts[0])
		if f == nil {
			// Let the flag parser report it.
			flags = append(flags, arg)
			continue
		}
		norm := "-" + f.Name
		if len(parts) == 2 {
			flags = append(flags, norm+"="+parts[1])
			continue
		}
		if isBoolFlag(f) {
			flags = append(flags, norm)
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("flag %s requires a value", arg)
		}
		flags = append(flags, norm, args[i+1])
		i++
	}
	return flags, positionals, nil
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func expectInts(args []string, n int, shape string) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d integer arguments", shape, n)
	}
	vals := make([]int, n)
	for i, raw := range args {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		vals[i] = v
	}
	return vals, nil
}

func parseRect(val string) (image.Rectangle, error) {
	parts := strings.Split(val, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("invalid region %q", val)
	}
	nums := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid region %q", val)
		}
		nums[i] = v
	}
	rect := image.Rect(nums[0], nums[1], nums[2], nums[3])
	if rect.Empty() {
		return image.Rectangle{}, fmt.Errorf("region %q is empty", val)
	}
	return rect, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
