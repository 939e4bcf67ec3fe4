package keyset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func Test_NewOrderSet(t *testing.T) {
	tests := []struct {
		name    string
		rel     Relation[Row]
		specs   []ColumnSpec
		columns string
		wantErr error
	}{
		{
			name:    "primary key appended",
			rel:     NewSQLRelation(nil, "posts"),
			specs:   []ColumnSpec{Col("published_at", "desc")},
			columns: "[(published_at desc), (id unique asc)]",
		},
		{
			name:    "unique last column is kept",
			rel:     NewSQLRelation(nil, "posts"),
			specs:   []ColumnSpec{Col("slug").WithUnique(true)},
			columns: "[(slug unique asc)]",
		},
		{
			name:    "custom primary key",
			rel:     NewSQLRelation(nil, "posts", WithPrimaryKey("uuid")),
			specs:   []ColumnSpec{Col("title")},
			columns: "[(title asc), (uuid unique asc)]",
		},
		{
			name:    "no primary key and no unique column",
			rel:     NewSQLRelation(nil, "posts", WithPrimaryKey("")),
			specs:   []ColumnSpec{Col("title")},
			wantErr: ErrInvalidColumnSpec,
		},
		{
			name:    "unique column not last",
			rel:     NewSQLRelation(nil, "posts"),
			specs:   []ColumnSpec{Col("id"), Col("title")},
			wantErr: ErrInvalidColumnSpec,
		},
		{
			name:    "empty ordering",
			rel:     NewSQLRelation(nil, "posts"),
			specs:   nil,
			wantErr: ErrInvalidColumnSpec,
		},
		{
			name:    "invalid column",
			rel:     NewSQLRelation(nil, "posts"),
			specs:   []ColumnSpec{Col("title", "sideways")},
			wantErr: ErrInvalidDirection,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := NewOrderSet(tt.rel, tt.specs)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, set)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.columns, set.String())
		})
	}
}

func Test_NewOrderSet_NilRelation(t *testing.T) {
	_, err := NewOrderSet[Row](nil, []ColumnSpec{Col("id")})
	require.Error(t, err)
}

func Test_OrderSet_Accessors(t *testing.T) {
	set := newTestSet(t, Postgres, []ColumnSpec{Col("pinned", []any{true, false}), Col("published_at", "desc")})

	columns := set.Columns()
	require.Len(t, columns, 3)
	assert.Equal(t, "id", columns[2].Name())

	// Columns returns a copy.
	columns[0] = nil
	assert.NotNil(t, set.Columns()[0])

	col, ok := set.Column("published_at")
	require.True(t, ok)
	assert.Equal(t, DirectionDESC, col.Direction())

	_, ok = set.Column("title")
	assert.False(t, ok)

	_, err := set.AtValues([]any{true})
	require.Error(t, err)

	assert.Same(t, set.Forward(), set.Forward())
	assert.Same(t, set.Reverse(), set.Reverse())
}

func Test_OrderSet_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	set, err := NewOrderSet[Row](
		NewSQLRelation(nil, "posts"),
		[]ColumnSpec{Col("published_at", "desc")},
		WithLogger(zap.New(core)),
	)
	require.NoError(t, err)

	built := logs.FilterMessage("order set built").All()
	require.Len(t, built, 1)
	assert.Equal(t, `"posts"."published_at" DESC, "posts"."id" ASC`, built[0].ContextMap()["order_by"])

	point, err := set.AtValues([]any{int64(10), int64(3)})
	require.NoError(t, err)
	_, err = point.Predicate(SideAfter, true)
	require.NoError(t, err)

	compiled := logs.FilterMessage("seek predicate compiled").All()
	require.Len(t, compiled, 1)
	assert.Equal(t, "after", compiled[0].ContextMap()["side"])
}
