package keyset

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Registry_Define(t *testing.T) {
	r := NewRegistry[Row]()

	require.NoError(t, r.Define("latest", Col("pinned", []any{true, false}), Col("published_at", "desc")))
	require.NoError(t, r.Define("alphabetical", Col("title")))

	tests := []struct {
		name   string
		oname  string
		specs  []ColumnSpec
		target error
	}{
		{"empty name", "", []ColumnSpec{Col("title")}, nil},
		{"no columns", "empty", nil, ErrInvalidColumnSpec},
		{"invalid column", "broken", []ColumnSpec{Col("title", "asc", "desc")}, ErrInvalidColumnSpec},
		{"empty domain", "broken", []ColumnSpec{Col("state", []any{})}, ErrInvalidColumnSpec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Define(tt.oname, tt.specs...)
			require.Error(t, err)
			if tt.target != nil {
				require.ErrorIs(t, err, tt.target)
			}
		})
	}

	assert.Equal(t, []string{"alphabetical", "latest"}, r.Names())
}

func Test_Registry_Ordering(t *testing.T) {
	r := NewRegistry[Row](WithTopLevelRangeWrap(false))
	require.NoError(t, r.Define("latest", Col("published_at", "desc")))

	_, err := r.Ordering("lates")
	require.ErrorIs(t, err, ErrUnknownOrdering)
	assert.Contains(t, err.Error(), "closest: 'latest'")

	latest, err := r.Ordering("latest")
	require.NoError(t, err)
	assert.Equal(t, "latest", latest.Name())

	specs := latest.Specs()
	specs[0] = Col("title")
	assert.Equal(t, "published_at", latest.Specs()[0].Name)

	base := NewSQLRelation(nil, "posts")

	set, err := latest.On(base)
	require.NoError(t, err)
	assert.Equal(t, "[(published_at desc), (id unique asc)]", set.String())

	forward, err := latest.Forward(base)
	require.NoError(t, err)
	sql, _ := forward.(*SQLRelation).ToSQL()
	assert.Equal(t, `SELECT * FROM "posts" ORDER BY "posts"."published_at" DESC, "posts"."id" ASC`, sql)

	reverse, err := latest.Reverse(base)
	require.NoError(t, err)
	sql, _ = reverse.(*SQLRelation).ToSQL()
	assert.Equal(t, `SELECT * FROM "posts" ORDER BY "posts"."published_at" ASC, "posts"."id" DESC`, sql)

	point, err := latest.At(base, Row{"id": int64(1), "published_at": int64(100)})
	require.NoError(t, err)

	// The registry options apply: no range wrap.
	expr, err := point.Predicate(SideAfter, true)
	require.NoError(t, err)
	assert.Equal(t, `"posts"."published_at" < ? OR ("posts"."published_at" = ? AND "posts"."id" > ?)`, expr.SQL)

	_, err = latest.On(NewSQLRelation(nil, "posts", WithPrimaryKey("")))
	require.ErrorIs(t, err, ErrInvalidColumnSpec)
	assert.Contains(t, err.Error(), "ordering 'latest'")
}

func Test_Registry_Concurrent(t *testing.T) {
	r := NewRegistry[Row]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()

			name := fmt.Sprintf("ordering-%d", i)
			assert.NoError(t, r.Define(name, Col("title")))

			_, err := r.Ordering(name)
			assert.NoError(t, err)
			_ = r.Names()
		}()
	}
	wg.Wait()

	assert.Len(t, r.Names(), 8)
}
