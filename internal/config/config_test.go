package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alp4ka/keyset"
)

const _blogConfig = `
engine = "sqlite"
dsn = "file:blog.db"

[orderings.latest]
table = "posts"
columns = [
  { name = "pinned", domain = [true, false] },
  { name = "published_at", direction = "desc", nulls = "first" },
]

[orderings.triage]
table = "tickets"
primary_key = "ticket_id"
columns = [
  { name = "state", domain = ["open", "closed"], domain_null = "first" },
  { name = "score", sql = "coalesce(score, 0)", direction = "desc" },
  { name = "ticket_id", unique = true },
]
`

func Test_Parse(t *testing.T) {
	f, err := Parse(_blogConfig)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", f.Engine)
	assert.Equal(t, "file:blog.db", f.DSN)
	assert.Equal(t, []string{"latest", "triage"}, f.OrderingNames())

	latest, err := f.Ordering("latest")
	require.NoError(t, err)
	assert.Equal(t, "posts", latest.Table)

	specs, err := latest.Specs()
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "[pinned [true, false]]", specs[0].String())
	assert.Equal(t, "[published_at desc nulls first]", specs[1].String())

	triage, err := f.Ordering("triage")
	require.NoError(t, err)
	assert.Equal(t, "ticket_id", triage.PrimaryKey)

	specs, err = triage.Specs()
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.Equal(t, []any{nil, "open", "closed"}, specs[0].Domain)
	assert.Equal(t, "coalesce(score, 0)", specs[1].SQL)
	require.NotNil(t, specs[2].Unique)
	assert.True(t, *specs[2].Unique)

	_, err = f.Ordering("lates")
	require.ErrorIs(t, err, keyset.ErrUnknownOrdering)
	assert.Contains(t, err.Error(), "latest, triage")
}

func Test_Parse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "invalid toml",
			data:    `engine = `,
			wantErr: "failed to decode config",
		},
		{
			name:    "unknown key",
			data:    "engine = \"sqlite\"\nport = 5432\n",
			wantErr: "unknown config keys: port",
		},
		{
			name:    "missing table",
			data:    "[orderings.a]\ncolumns = [{ name = \"x\" }]\n",
			wantErr: "ordering 'a': table is required",
		},
		{
			name:    "missing columns",
			data:    "[orderings.a]\ntable = \"t\"\n",
			wantErr: "ordering 'a': no columns",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.data)
			require.Error(t, err)
			assert.Nil(t, f)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func Test_Column_Spec(t *testing.T) {
	spec, err := Column{Name: "state", Domain: []any{"a"}, DomainNull: "LAST"}.Spec()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", nil}, spec.Domain)
	assert.Nil(t, spec.SQL)

	spec, err = Column{Name: "title", Direction: "desc"}.Spec()
	require.NoError(t, err)
	assert.Equal(t, keyset.Direction("desc"), spec.Direction)
	assert.Nil(t, spec.Domain)

	_, err = Column{Name: "state", DomainNull: "middle"}.Spec()
	require.Error(t, err)
}

func Test_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keysetq.toml")
	require.NoError(t, os.WriteFile(path, []byte(_blogConfig), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Orderings, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
