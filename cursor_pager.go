package keyset

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

// RawCursorPager is intended for API payloads. For proper code generation, inline it:
//
//	type MyFilter struct {
//	    Paging RawCursorPager `json:",inline"`
//	}
type RawCursorPager struct {
	// Limit - maximum number of records to return in the response.
	Limit int `json:"limit"`
	// StartToken - base64-encoded cursor token obtained via Cursor.String().
	// If empty, the first page with Limit records is returned.
	StartToken string `json:"startToken"`
}

// Decode converts RawCursorPager into *CursorPager, normalizing Limit and
// decoding StartToken. The token is checked against an order set on Paginate.
func (p RawCursorPager) Decode() (*CursorPager, error) {
	return DecodeCursorPager(p.Limit, p.StartToken)
}

// CursorPager pages through an OrderSet: each page starts strictly after
// (or, backward, strictly before) the point held by the cursor.
type CursorPager struct {
	lookahead bool
	backward  bool
	limit     int
	cursor    *Cursor
}

// NewCursorPager returns a pager for the first DefaultLimit rows.
func NewCursorPager() *CursorPager {
	return &CursorPager{limit: DefaultLimit}
}

// DecodeCursorPager decodes a cursor token into *CursorPager.
func DecodeCursorPager(limit int, rawStartToken string) (*CursorPager, error) {
	cursor, err := DecodeCursor(rawStartToken)
	if err != nil {
		return nil, err
	}

	return (&CursorPager{
		cursor: cursor,
	}).WithLimit(limit), nil
}

// WithLookahead enables lookahead pagination, which checks the next page to
// determine whether the current page is the last.
//
// IMPORTANT:
// Cannot be used together with WithUnlimited() or WithLimit(NoLimit).
func (c *CursorPager) WithLookahead() *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.lookahead = true

	return c
}

// WithBackward pages towards the start of the ordering. Rows of a page come
// nearest first, i.e. in reverse order.
func (c *CursorPager) WithBackward() *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.backward = true

	return c
}

// WithUnlimited allows returning all records without a limit.
//
// IMPORTANT:
// Cannot be used together with WithLookahead.
func (c *CursorPager) WithUnlimited() *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.limit = NoLimit

	return c
}

// WithLimit sets the maximum number of returned records.
//
// IMPORTANT:
//   - NoLimit cannot be used together with WithLookahead.
//   - If the limit is not NoLimit, NormalizeLimit will be applied.
func (c *CursorPager) WithLimit(limit int) *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	if limit == NoLimit {
		return c.WithUnlimited()
	}
	c.limit = NormalizeLimit(limit)

	return c
}

// WithCursor sets the cursor explicitly.
func (c *CursorPager) WithCursor(cursor *Cursor) *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.cursor = cursor

	return c
}

// IsUnlimited returns true if the limit equals NoLimit (unbounded number of records).
func (c *CursorPager) IsUnlimited() bool {
	if c == nil {
		return false
	}

	return c.limit == NoLimit
}

// IsLookahead returns true if lookahead pagination is enabled.
func (c *CursorPager) IsLookahead() bool {
	if c == nil {
		return false
	}

	return c.lookahead
}

func (c *CursorPager) IsBackward() bool {
	if c == nil {
		return false
	}

	return c.backward
}

// GetLimit returns the limit as it is stored in CursorPager.
// The return value is >= 0. Returning NoLimit is equivalent to no limit.
func (c *CursorPager) GetLimit() int {
	if c == nil {
		return 0
	}

	return c.limit
}

// GetCursor returns the cursor stored in CursorPager as-is.
func (c *CursorPager) GetCursor() *Cursor {
	if c == nil {
		return nil
	}

	return c.cursor
}

// GetDatasetLimit returns the limit adjusted for lookahead:
//   - if Lookahead = true → GetLimit() + 1
//   - if Lookahead = false → GetLimit()
func (c *CursorPager) GetDatasetLimit() int {
	limit := c.GetLimit()
	isLookahead := c.IsLookahead()

	return lo.Ternary(isLookahead, limit+1, limit)
}

// orDefault returns c, falling back to DefaultLimit when c is nil or holds
// no limit.
func (c *CursorPager) orDefault() *CursorPager {
	if c == nil {
		return NewCursorPager()
	}
	if c.limit == 0 {
		ret := *c
		ret.limit = DefaultLimit
		return &ret
	}

	return c
}

func (c *CursorPager) validate(columns []*Column) error {
	if c == nil {
		return fmt.Errorf("cursor pager is nil")
	}

	if c.limit == NoLimit && c.lookahead {
		return fmt.Errorf("cannot apply lookahead to unlimited paging")
	}

	return c.cursor.validate(columns)
}

// Paginate returns the page relation of set: ordered, started after the
// cursor and limited. A nil pager, or one without a limit, fetches
// DefaultLimit rows. Returns an error if pagination cannot be applied.
func Paginate[T any](pager *CursorPager, set *OrderSet[T]) (Relation[T], error) {
	pager = pager.orDefault()

	err := pager.validate(set.columns)
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	var rel Relation[T]
	switch {
	case pager.cursor.IsEmpty() && pager.backward:
		rel = set.Reverse()
	case pager.cursor.IsEmpty():
		rel = set.Forward()
	default:
		point, err := set.AtValues(pager.cursor.values())
		if err != nil {
			return nil, fmt.Errorf("cannot paginate: %w", err)
		}

		if pager.backward {
			rel, err = point.Before(true)
		} else {
			rel, err = point.After(true)
		}
		if err != nil {
			return nil, fmt.Errorf("cannot paginate: %w", err)
		}
	}

	// Apply limit to the dataset. When lookahead is enabled, fetch one extra
	// record to determine if there is a next page.
	if pager.limit != NoLimit {
		rel = rel.WithLimit(pager.GetDatasetLimit())
	}

	return rel, nil
}

// NextPageCursor returns the result set trimmed for the client and the
// cursor of the following page, nil when the result set is the last page.
func NextPageCursor[T any](pager *CursorPager, set *OrderSet[T], resultSet []T) ([]T, *Cursor, error) {
	pager = pager.orDefault()

	err := pager.validate(set.columns)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot build next page cursor: %w", err)
	}

	if IsLastPage(pager, resultSet) {
		return resultSet, nil, nil
	}
	resultSet = TrimResultSet(pager, resultSet)

	cursor, err := CursorAt(set.At(lo.LastOrEmpty(resultSet)))
	if err != nil {
		return nil, nil, fmt.Errorf("cannot build next page cursor: %w", err)
	}

	return resultSet, cursor, nil
}

// FetchPage runs Paginate and NextPageCursor and counts the whole set.
func FetchPage[T any](ctx context.Context, pager *CursorPager, set *OrderSet[T]) (PaginationResult[T], error) {
	pager = pager.orDefault()

	rel, err := Paginate(pager, set)
	if err != nil {
		return PaginationResult[T]{}, err
	}

	rows, err := rel.Find(ctx)
	if err != nil {
		return PaginationResult[T]{}, fmt.Errorf("cannot fetch page: %w", err)
	}

	total, err := set.Count(ctx)
	if err != nil {
		return PaginationResult[T]{}, fmt.Errorf("cannot fetch page: %w", err)
	}

	items, next, err := NextPageCursor(pager, set, rows)
	if err != nil {
		return PaginationResult[T]{}, err
	}

	return PaginationResult[T]{
		Items:         items,
		Total:         total,
		AppliedLimit:  pager.GetLimit(),
		NextPageToken: next,
	}, nil
}

// IsLastPage returns true if the result set is the last page in the dataset.
//
// The last page is determined by one of two conditions:
//  1. The number of returned records is less than Limit.
//  2. Lookahead = true and the number of returned records is less than or equal to Limit.
//
// An unlimited pager always returns the last page.
func IsLastPage[T any](pager *CursorPager, resultSet []T) bool {
	return pager.IsUnlimited() ||
		len(resultSet) == 0 ||
		len(resultSet) < pager.GetLimit() ||
		(pager.IsLookahead() && len(resultSet) <= pager.GetLimit())
}

// TrimResultSet trims the result set to what should be returned to the client.
//
// If lookahead = true, drop the last element before returning. Suppose
// resultSet = [a, b, c].
//
//   - With lookahead → resultSet becomes [a, b].
//   - Without lookahead → resultSet remains unchanged.
//
// This enables building pagination based on a STRICT comparison with the
// last element of the result set.
func TrimResultSet[T any](pager *CursorPager, resultSet []T) []T {
	if pager.IsLookahead() && len(resultSet) > pager.GetLimit() {
		resultSet = resultSet[:len(resultSet)-1]
	}

	return resultSet
}
