package internal

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Jeanphaie/lk-invest/internal/util"
)

//go:embed manifest.toml
var defaultManifest []byte

// TableSpec describes one table of the export.
type TableSpec struct {
	// Name is both the table name and the export file base name.
	Name string `toml:"name"`

	// PrimaryKey is only consulted by the skip and update conflict policies.
	PrimaryKey string `toml:"primary_key"`

	// JSONFields are the columns bound as native JSON values.
	JSONFields []string `toml:"json_fields"`
}

// IsJSONField returns true if the column must be encoded as JSON.
func (t TableSpec) IsJSONField(column string) bool {
	return util.SliceContains(t.JSONFields, column)
}

// Manifest is the ordered list of tables.
type Manifest struct {
	Tables []TableSpec `toml:"table"`
}

// Names returns the table names in order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Tables))
	for _, t := range m.Tables {
		names = append(names, t.Name)
	}
	return names
}

// Table returns the spec for the named table.
func (m *Manifest) Table(name string) (TableSpec, bool) {
	for _, t := range m.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableSpec{}, false
}

// Filter returns a manifest restricted to the named tables. Manifest order is kept.
// An empty list returns the manifest unchanged.
func (m *Manifest) Filter(only []string) (*Manifest, error) {
	if len(only) == 0 {
		return m, nil
	}
	for _, name := range only {
		if _, ok := m.Table(name); !ok {
			return nil, fmt.Errorf("table %s is not in the manifest", name)
		}
	}
	var res Manifest
	for _, t := range m.Tables {
		if util.SliceContains(only, t.Name) {
			res.Tables = append(res.Tables, t)
		}
	}
	return &res, nil
}

func (m *Manifest) validate() error {
	if len(m.Tables) == 0 {
		return fmt.Errorf("manifest has no tables")
	}
	seen := make(map[string]bool)
	for i, t := range m.Tables {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("table #%d has no name", i+1)
		}
		if seen[t.Name] {
			return fmt.Errorf("table %s is declared more than once", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// ParseManifest decodes a TOML manifest.
func ParseManifest(buf []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(buf), &m)
	if err != nil {
		return nil, fmt.Errorf("error decoding manifest: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown manifest key: %s", undecoded[0])
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// DefaultManifest returns the built-in table list.
func DefaultManifest() *Manifest {
	m, err := ParseManifest(defaultManifest)
	if err != nil {
		panic(err)
	}
	return m
}

// LoadManifest loads the manifest file at fn, or the built-in manifest when fn is empty.
func LoadManifest(fn string) (*Manifest, error) {
	if fn == "" {
		return DefaultManifest(), nil
	}
	buf, err := os.ReadFile(fn)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest: %s. %w", fn, err)
	}
	return ParseManifest(buf)
}
