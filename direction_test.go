package keyset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseDirection(t *testing.T) {
	tests := []struct {
		name    string
		token   any
		want    Direction
		wantErr bool
	}{
		{"lower asc", "asc", DirectionASC, false},
		{"upper DESC", "DESC", DirectionDESC, false},
		{"mixed case with spaces", "  Desc ", DirectionDESC, false},
		{"typed direction", DirectionASC, DirectionASC, false},
		{"unknown token", "up", "", true},
		{"empty token", "", "", true},
		{"non-string token", 1, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDirection(tt.token)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDirection)
				assert.Contains(t, err.Error(), `"asc", "desc"`)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_ParseNullsPosition(t *testing.T) {
	tests := []struct {
		name    string
		token   any
		want    NullsPosition
		wantErr bool
	}{
		{"first", "first", NullsFirst, false},
		{"LAST", "LAST", NullsLast, false},
		{"typed position", NullsLast, NullsLast, false},
		{"unknown token", "middle", "", true},
		{"non-string token", true, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNullsPosition(tt.token)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidNullsPosition)
				assert.Contains(t, err.Error(), `"first", "last"`)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_Direction_Reverse(t *testing.T) {
	for _, d := range _directions {
		assert.NotEqual(t, d, d.Reverse())
		assert.Equal(t, d, d.Reverse().Reverse())
	}

	for _, n := range _nullsPositions {
		assert.NotEqual(t, n, n.Reverse())
		assert.Equal(t, n, n.Reverse().Reverse())
	}

	assert.Panics(t, func() { Direction("up").Reverse() })
	assert.Panics(t, func() { NullsPosition("middle").Reverse() })
}

func Test_Direction_ForOperator(t *testing.T) {
	assert.Equal(t, OperatorGT, DirectionASC.ForOperator())
	assert.Equal(t, OperatorLT, DirectionDESC.ForOperator())
	assert.Panics(t, func() { Direction("").ForOperator() })
}

func Test_Side_Valid(t *testing.T) {
	assert.True(t, SideBefore.Valid())
	assert.True(t, SideAfter.Valid())
	assert.False(t, Side("around").Valid())
}
