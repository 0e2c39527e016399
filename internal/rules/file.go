package rules

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the rule table location inside a workspace.
const DefaultPath = "rules/classification-rules.yaml"

// Read decodes a YAML rule table, validates it and normalizes its keywords.
func Read(r io.Reader) (*Table, error) {
	var t Table
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading rules: empty rule table")
		}
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	if verrs := t.Validate(); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return nil, fmt.Errorf("invalid rules: %s", strings.Join(msgs, "; "))
	}
	return t.Normalized(), nil
}

// Write encodes t as YAML.
func Write(w io.Writer, t *Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return enc.Close()
}

// LoadFile reads a rule table from path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rules: %w", err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Resolve returns the table a workspace should use: the file at path
// (relative paths are resolved against repoRoot) when it exists, otherwise
// the built-in variant.
func Resolve(repoRoot, path, variant string) (*Table, error) {
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(repoRoot, path)
		}
		t, err := LoadFile(path)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if variant != "" && !IsVariant(variant) {
		return nil, fmt.Errorf("unknown rules variant %q (want one of %s)", variant, strings.Join(Variants(), ", "))
	}
	return DefaultTable(variant), nil
}

// Save writes t to <repoRoot>/rules/classification-rules.yaml.
func Save(repoRoot string, t *Table) error {
	path := filepath.Join(repoRoot, DefaultPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating rules file: %w", err)
	}
	defer f.Close()

	return Write(f, t)
}
