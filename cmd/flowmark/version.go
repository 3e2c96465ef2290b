package main

import (
	"flag"
	"fmt"
	"strings"
)

type versionCmd struct {
	*root
	fs *flag.FlagSet
}

func (v *versionCmd) FlagSet() *flag.FlagSet {
	return v.fs
}

func parseVersionCmd(args []string, r *root) (*versionCmd, error) {
	fs := flag.NewFlagSet("version", flag.ExitOnError)
	v := &versionCmd{root: r, fs: fs}
	fs.Usage = usageFunc(v)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: v}
	}
	return v, nil
}

func (v *versionCmd) Run() error {
	fmt.Fprintf(stdout, "%s version %s\n", rootProgram(v.root), version)
	if commit != "" {
		fmt.Fprintf(stdout, "commit: %s\n", commit)
	}
	if date != "" {
		fmt.Fprintf(stdout, "built: %s\n", date)
	}
	return nil
}

// rootProgram strips the subcommand from r's program name.
func rootProgram(r *root) string {
	if r == nil || r.program == "" {
		return "flowmark"
	}
	if i := strings.IndexByte(r.program, ' '); i > 0 {
		return r.program[:i]
	}
	return r.program
}
