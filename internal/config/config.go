// Package config loads keysetq configuration files: the connection and the
// named orderings, in TOML.
//
//	engine = "sqlite"
//	dsn = "file:blog.db"
//
//	[orderings.latest]
//	table = "posts"
//	columns = [
//	  { name = "pinned", domain = [true, false] },
//	  { name = "published_at", direction = "desc", nulls = "first" },
//	]
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"

	"github.com/Alp4ka/keyset"
)

type File struct {
	Engine    string              `toml:"engine"`
	DSN       string              `toml:"dsn"`
	Orderings map[string]Ordering `toml:"orderings"`
}

// Ordering is a named ordering of one table.
type Ordering struct {
	Table      string   `toml:"table"`
	PrimaryKey string   `toml:"primary_key"`
	Columns    []Column `toml:"columns"`
}

// Column mirrors keyset.ColumnSpec. TOML has no null, so NULL's place in a
// domain is given by DomainNull ("first" or "last").
type Column struct {
	Name       string `toml:"name"`
	Domain     []any  `toml:"domain"`
	DomainNull string `toml:"domain_null"`
	Direction  string `toml:"direction"`
	Nulls      string `toml:"nulls"`
	Unique     *bool  `toml:"unique"`
	SQL        string `toml:"sql"`
}

// Load decodes path. Unknown keys are rejected.
func Load(path string) (*File, error) {
	var f File

	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err = f.check(md); err != nil {
		return nil, err
	}

	return &f, nil
}

// Parse decodes TOML text.
func Parse(data string) (*File, error) {
	var f File

	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err = f.check(md); err != nil {
		return nil, err
	}

	return &f, nil
}

func (f *File) check(md toml.MetaData) error {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := lo.Map(undecoded, func(k toml.Key, _ int) string { return k.String() })
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	return f.validate()
}

func (f *File) validate() error {
	for name, o := range f.Orderings {
		if o.Table == "" {
			return fmt.Errorf("ordering '%s': table is required", name)
		}
		if len(o.Columns) == 0 {
			return fmt.Errorf("ordering '%s': no columns", name)
		}
	}

	return nil
}

// OrderingNames lists the defined orderings, sorted.
func (f *File) OrderingNames() []string {
	names := lo.Keys(f.Orderings)
	slices.Sort(names)

	return names
}

// Ordering looks a named ordering up.
func (f *File) Ordering(name string) (Ordering, error) {
	o, ok := f.Orderings[name]
	if !ok {
		return Ordering{}, fmt.Errorf("%w '%s', defined: %s", keyset.ErrUnknownOrdering, name, strings.Join(f.OrderingNames(), ", "))
	}

	return o, nil
}

// Specs converts the columns into keyset column specs.
func (o Ordering) Specs() ([]keyset.ColumnSpec, error) {
	specs := make([]keyset.ColumnSpec, 0, len(o.Columns))
	for _, c := range o.Columns {
		spec, err := c.Spec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

func (c Column) Spec() (keyset.ColumnSpec, error) {
	spec := keyset.ColumnSpec{
		Name:      c.Name,
		Direction: keyset.Direction(c.Direction),
		Nulls:     keyset.NullsPosition(c.Nulls),
		Unique:    c.Unique,
	}
	if c.SQL != "" {
		spec.SQL = c.SQL
	}

	if c.Domain != nil {
		spec.Domain = slices.Clone(c.Domain)
	}

	switch strings.ToLower(c.DomainNull) {
	case "":
	case "first":
		spec.Domain = append([]any{nil}, spec.Domain...)
	case "last":
		spec.Domain = append(spec.Domain, nil)
	default:
		return keyset.ColumnSpec{}, fmt.Errorf("column '%s': domain_null must be first or last, is '%s'", c.Name, c.DomainNull)
	}

	return spec, nil
}
