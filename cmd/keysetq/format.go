package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"

	"github.com/Alp4ka/keyset"
)

// printRows prints rows as a table: ordering columns first, then the rest
// by name.
func printRows(w io.Writer, set *keyset.OrderSet[keyset.Row], rows []keyset.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}

	ordered := lo.Map(set.Columns(), func(c *keyset.Column, _ int) string { return c.Name() })
	rest := lo.Filter(lo.Keys(rows[0]), func(k string, _ int) bool { return !slices.Contains(ordered, k) })
	slices.Sort(rest)
	columns := lo.Filter(ordered, func(k string, _ int) bool {
		_, ok := rows[0][k]
		return ok
	})
	columns = append(columns, rest...)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, row := range rows {
		cells := lo.Map(columns, func(c string, _ int) string { return formatValue(row[c]) })
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}

func formatValue(v any) string {
	switch vt := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(vt)
	default:
		return fmt.Sprint(vt)
	}
}
