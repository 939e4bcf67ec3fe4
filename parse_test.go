package keyset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseSort(t *testing.T) {
	mapping := ColumnMapping{
		"date": Col("published_at", "desc"),
		"name": {},
		"plan": Col("plan", []string{"free", "pro"}),
	}

	tests := []struct {
		name    string
		sort    []string
		want    []ColumnSpec
		wantErr string
	}{
		{
			name: "mapped spec kept as is",
			sort: []string{"date"},
			want: []ColumnSpec{Col("published_at", "desc")},
		},
		{
			name: "direction overrides the mapping",
			sort: []string{"date ASC", "plan"},
			want: []ColumnSpec{Col("published_at").Asc(), Col("plan", []string{"free", "pro"})},
		},
		{
			name: "empty spec takes the alias as column name",
			sort: []string{"name desc nulls last"},
			want: []ColumnSpec{Col("name").Desc().WithNulls(NullsLast)},
		},
		{
			name: "no sort",
			sort: nil,
			want: []ColumnSpec{},
		},
		{name: "empty string", sort: []string{" "}, wantErr: "invalid ordering string format"},
		{name: "three fields", sort: []string{"date asc nulls"}, wantErr: "invalid ordering string format"},
		{name: "five fields", sort: []string{"date asc nulls last now"}, wantErr: "invalid ordering string format"},
		{name: "forbidden symbols", sort: []string{"date;drop"}, wantErr: "forbidden symbols"},
		{name: "unknown alias", sort: []string{"dte"}, wantErr: "closest: 'date'"},
		{name: "bad direction", sort: []string{"date sideways"}, wantErr: "invalid sort direction"},
		{name: "missing nulls keyword", sort: []string{"date asc empties last"}, wantErr: "invalid ordering string format"},
		{name: "bad nulls position", sort: []string{"date asc nulls middle"}, wantErr: "invalid nulls position"},
		{name: "duplicate column", sort: []string{"date", "date desc"}, wantErr: "duplicate ordering column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSort(tt.sort, mapping)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_ParseSort_BuildsOrderSet(t *testing.T) {
	specs, err := ParseSort([]string{"plan asc", "date"}, ColumnMapping{
		"date": Col("published_at", "desc"),
		"plan": Col("plan", []string{"free", "pro"}),
	})
	require.NoError(t, err)

	set := newTestSet(t, Postgres, specs)
	assert.Equal(t, `"posts"."plan" = ? ASC, "posts"."plan" = ? ASC, "posts"."published_at" DESC, "posts"."id" ASC`, set.OrderBy().SQL)
}
