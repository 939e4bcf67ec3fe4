package keyset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_IsNormalizedLimitMax(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		maxLimit int
		want     int
		kept     bool
	}{
		{name: "zero", limit: 0, maxLimit: 20, want: DefaultLimit},
		{name: "no limit is not a page size", limit: NoLimit, maxLimit: 20, want: DefaultLimit},
		{name: "one", limit: 1, maxLimit: 20, want: 1, kept: true},
		{name: "at max", limit: 20, maxLimit: 20, want: 20, kept: true},
		{name: "over max", limit: 21, maxLimit: 20, want: 20},
		{name: "max below default", limit: 0, maxLimit: 3, want: DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kept := IsNormalizedLimitMax(tt.limit, tt.maxLimit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.kept, kept)
			assert.Equal(t, tt.want, NormalizeLimitMax(tt.limit, tt.maxLimit))
		})
	}
}

func Test_NormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, 42, NormalizeLimit(42))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit*3))
}

func Test_CursorPager_WithLimit_Normalizes(t *testing.T) {
	tests := []struct {
		name        string
		pager       *CursorPager
		wantLimit   int
		wantDataset int
		unlimited   bool
	}{
		{
			name:        "default for zero",
			pager:       NewCursorPager().WithLimit(0),
			wantLimit:   DefaultLimit,
			wantDataset: DefaultLimit,
		},
		{
			name:        "clamped with lookahead",
			pager:       NewCursorPager().WithLimit(MaxLimit + 5).WithLookahead(),
			wantLimit:   MaxLimit,
			wantDataset: MaxLimit + 1,
		},
		{
			name:        "no limit",
			pager:       NewCursorPager().WithLimit(NoLimit),
			wantLimit:   NoLimit,
			wantDataset: NoLimit,
			unlimited:   true,
		},
		{
			name:        "decoded pager",
			pager:       RawCursorPager{Limit: -4}.mustDecode(t),
			wantLimit:   DefaultLimit,
			wantDataset: DefaultLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLimit, tt.pager.GetLimit())
			assert.Equal(t, tt.wantDataset, tt.pager.GetDatasetLimit())
			assert.Equal(t, tt.unlimited, tt.pager.IsUnlimited())
		})
	}
}

func (p RawCursorPager) mustDecode(t *testing.T) *CursorPager {
	t.Helper()

	pager, err := p.Decode()
	if err != nil {
		t.Fatalf("decode pager: %v", err)
	}

	return pager
}
