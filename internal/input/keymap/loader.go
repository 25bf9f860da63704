package keymap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/dshills/keyline/internal/input/key"
)

// ErrUnsupportedFormat is returned for unknown config file extensions.
var ErrUnsupportedFormat = errors.New("unsupported keymap file format")

// FileBinding is one entry in a user keymap file.
type FileBinding struct {
	// Table names the target table: "emacs", "vi-insert", "vi-command".
	// Empty means "emacs".
	Table string `toml:"table" yaml:"table" json:"table"`

	// Keys is the key specification, e.g. "C-t" or "Alt+u".
	Keys string `toml:"keys" yaml:"keys" json:"keys"`

	// Action is the handler name to bind.
	Action string `toml:"action" yaml:"action" json:"action"`

	// Description documents the binding.
	Description string `toml:"description" yaml:"description" json:"description"`
}

// fileSchema is the top-level shape of a keymap file.
type fileSchema struct {
	Bindings []FileBinding `toml:"bindings" yaml:"bindings" json:"bindings"`
}

// LoadFile reads user bindings from a TOML, YAML or JSON file.
// Returns nil, nil if the file does not exist.
func LoadFile(path string) ([]FileBinding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading keymap file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return parseTOML(data)
	case ".yaml", ".yml":
		return parseYAML(data)
	case ".json":
		return parseJSON(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func parseTOML(data []byte) ([]FileBinding, error) {
	var schema fileSchema
	if err := toml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing TOML keymap: %w", err)
	}
	return schema.Bindings, nil
}

func parseYAML(data []byte) ([]FileBinding, error) {
	var schema fileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing YAML keymap: %w", err)
	}
	return schema.Bindings, nil
}

func parseJSON(data []byte) ([]FileBinding, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("parsing JSON keymap: invalid JSON")
	}

	var bindings []FileBinding
	gjson.GetBytes(data, "bindings").ForEach(func(_, entry gjson.Result) bool {
		bindings = append(bindings, FileBinding{
			Table:       entry.Get("table").String(),
			Keys:        entry.Get("keys").String(),
			Action:      entry.Get("action").String(),
			Description: entry.Get("description").String(),
		})
		return true
	})
	return bindings, nil
}

// Apply validates the file bindings and installs them into the named
// tables. Unknown table names and unparseable key specs are errors;
// nothing is installed unless every entry validates.
func Apply(bindings []FileBinding, tables map[string]*Table) error {
	type resolved struct {
		table *Table
		ev    key.Event
		b     Binding
	}

	install := make([]resolved, 0, len(bindings))
	for i, fb := range bindings {
		name := fb.Table
		if name == "" {
			name = "emacs"
		}
		table, ok := tables[name]
		if !ok {
			return fmt.Errorf("binding %d: unknown table %q", i, name)
		}
		if fb.Keys == "" {
			return fmt.Errorf("binding %d: empty keys", i)
		}
		if fb.Action == "" {
			return fmt.Errorf("binding %d (%s): empty action", i, fb.Keys)
		}
		ev, err := key.Parse(fb.Keys)
		if err != nil {
			return fmt.Errorf("binding %d (%s): %w", i, fb.Keys, err)
		}
		install = append(install, resolved{
			table: table,
			ev:    ev,
			b:     NewBinding(fb.Action, fb.Description),
		})
	}

	for _, r := range install {
		r.table.Bind(r.ev, r.b)
	}
	return nil
}
