// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	ini "github.com/lars-t-hansen/ini"
)

// ErrInvalid wraps parse failures of a config file.
var ErrInvalid = errors.New("invalid config file")

// FileName is looked up in $HOME when no --config is given.
const FileName = ".mutfreq"

type setting struct {
	flag  string
	field *ini.Field
}

// MT: Constant after initialization
var (
	p        = ini.NewParser()
	settings []setting
)

func init() {
	alignment := p.AddSection("alignment")
	for _, n := range []string{"match", "mismatch", "gap-open", "gap-extend", "max-seq-len", "timeout-per-sample"} {
		settings = append(settings, setting{flag: n, field: alignment.AddString(n)})
	}
	run := p.AddSection("run")
	for _, n := range []string{"min-count", "threads", "reference", "exclude-reference", "skip-ambiguous"} {
		settings = append(settings, setting{flag: n, field: run.AddString(n)})
	}
	output := p.AddSection("output")
	for _, n := range []string{"long-format", "freq-format", "pg-url", "pg-table", "metrics-push"} {
		settings = append(settings, setting{flag: n, field: output.AddString(n)})
	}
}

// Keys lists every recognized key; each one is also a flag name.
func Keys() []string {
	out := make([]string, len(settings))
	for i, s := range settings {
		out[i] = s.flag
	}
	return out
}

// Parse reads an INI document and returns flag name -> value for the keys
// that are present. Values go through os.ExpandEnv.
func Parse(r io.Reader) (map[string]string, error) {
	store, err := p.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	out := map[string]string{}
	for _, s := range settings {
		if s.field.Present(store) {
			out[s.flag] = os.ExpandEnv(s.field.StringVal(store))
		}
	}
	return out, nil
}

func Load(path string) (map[string]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	vals, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vals, nil
}

// DefaultPath is $HOME/.mutfreq, or "" without HOME.
func DefaultPath() string {
	home := os.Getenv("HOME")
	if home == "" {
		return ""
	}
	return filepath.Join(filepath.Clean(home), FileName)
}

// LoadDefault loads DefaultPath, treating a missing file as empty.
func LoadDefault() (map[string]string, error) {
	fn := DefaultPath()
	if fn == "" {
		return nil, nil
	}
	vals, err := Load(fn)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return vals, err
}
