package keyset

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

type (
	ColumnAlias = string

	// ColumnMapping maps external column aliases (as API clients send them) to
	// column specs. A direction or nulls position given in the sort string
	// overrides the ColumnSpec's.
	ColumnMapping = map[ColumnAlias]ColumnSpec
)

var _availableAliasSymbols = append([]rune("_.-"), lo.AlphanumericCharset...)

// ParseSort builds column specs from sort strings of the form
//
//	"<alias> [asc|desc] [nulls first|last]"
//
// Aliases are resolved via mapping; an unknown alias fails with the closest
// known one in the message.
func ParseSort(sort []string, mapping ColumnMapping) ([]ColumnSpec, error) {
	ret := make([]ColumnSpec, 0, len(sort))
	aliases := lo.Keys(mapping)
	slices.Sort(aliases)

	for _, raw := range sort {
		fields := strings.Fields(raw)
		if len(fields) == 0 || len(fields) > 4 || len(fields) == 3 {
			return nil, fmt.Errorf("invalid ordering string format '%s'", raw)
		}

		alias := fields[0]
		if !lo.Every(_availableAliasSymbols, []rune(alias)) {
			return nil, fmt.Errorf("ordering column alias contains forbidden symbols '%s'", alias)
		}

		spec, ok := mapping[alias]
		if !ok {
			return nil, fmt.Errorf("invalid column alias '%s'. closest: '%s'", alias, closest(alias, aliases))
		}
		if spec.Name == "" {
			spec.Name = alias
		}

		if len(fields) > 1 {
			dir, err := ParseDirection(fields[1])
			if err != nil {
				return nil, fmt.Errorf("invalid ordering string '%s': %w", raw, err)
			}
			spec.Direction = dir
		}

		if len(fields) == 4 {
			if !strings.EqualFold(fields[2], "nulls") {
				return nil, fmt.Errorf("invalid ordering string format '%s'", raw)
			}
			nulls, err := ParseNullsPosition(fields[3])
			if err != nil {
				return nil, fmt.Errorf("invalid ordering string '%s': %w", raw, err)
			}
			spec.Nulls = nulls
		}

		if slices.ContainsFunc(ret, func(s ColumnSpec) bool { return s.Name == spec.Name }) {
			return nil, fmt.Errorf("duplicate ordering column '%s'", alias)
		}
		ret = append(ret, spec)
	}

	return ret, nil
}
