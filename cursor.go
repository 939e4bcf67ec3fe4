package keyset

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"
)

var _encoder = base64.RawURLEncoding

// Cursor is a pagination token holding the reference values of a point, one
// element per column of the order set:
//
//	[(C1, V1), (C2, V2)... (Cn, Vn)]
//
// The last element always belongs to the unique column. An empty cursor
// means the start of the dataset.
type Cursor struct {
	elements []CursorElement
}

// CursorElement is a (column, value) pair of a Cursor.
type CursorElement struct {
	Column string `json:"c"`
	Value  any    `json:"v"`
}

// cursorElementJSON is the wire form of a CursorElement. Time values carry
// the "t" flag, so strings that merely look like timestamps stay strings.
type cursorElementJSON struct {
	Column string `json:"c"`
	Value  any    `json:"v"`
	Time   bool   `json:"t,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e CursorElement) MarshalJSON() ([]byte, error) {
	w := cursorElementJSON{Column: e.Column, Value: e.Value}
	if ts, ok := normalizeValue(e.Value).(time.Time); ok {
		w.Value, w.Time = ts.Format(time.RFC3339Nano), true
	}

	return json.Marshal(w)
}

func (w cursorElementJSON) element() (CursorElement, error) {
	if !w.Time {
		return CursorElement{Column: w.Column, Value: parseAnyValue(w.Value)}, nil
	}

	s, ok := w.Value.(string)
	if !ok {
		return CursorElement{}, fmt.Errorf("time value of column '%s' is %T", w.Column, w.Value)
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return CursorElement{}, fmt.Errorf("time value of column '%s': %w", w.Column, err)
	}

	return CursorElement{Column: w.Column, Value: ts}, nil
}

func NewCursor(elements ...CursorElement) *Cursor {
	return &Cursor{
		elements: elements,
	}
}

// CursorAt returns the cursor of point.
func CursorAt[T any](point *Point[T]) (*Cursor, error) {
	values, err := point.Values()
	if err != nil {
		return nil, fmt.Errorf("cannot build cursor: %w", err)
	}

	elements := lo.Map(point.set.columns, func(col *Column, i int) CursorElement {
		return CursorElement{Column: col.name, Value: values[i]}
	})

	return NewCursor(elements...), nil
}

// DecodeCursor parses a base64 encoded cursor. An empty string decodes to a
// nil cursor.
func DecodeCursor(b64String string) (*Cursor, error) {
	if len(b64String) == 0 {
		return nil, nil
	}

	jsonData, err := _encoder.DecodeString(b64String)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64 encoded cursor: %w", ErrInvalidCursor, err)
	}

	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()

	var wire []cursorElementJSON
	if err = dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal json encoded cursor: %w", ErrInvalidCursor, err)
	}

	elems := make([]CursorElement, 0, len(wire))
	for _, w := range wire {
		elem, err := w.element()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
		}
		elems = append(elems, elem)
	}

	return &Cursor{
		elements: elems,
	}, nil
}

// String implements fmt.Stringer.
func (c *Cursor) String() string {
	if c.IsEmpty() {
		return ""
	}

	jTok, err := json.Marshal(c.elements)
	if err != nil {
		panic(fmt.Errorf("cannot marshal cursor value: %w", err))
	}

	return _encoder.EncodeToString(jTok)
}

func (c *Cursor) IsEmpty() bool {
	return c == nil || len(c.elements) == 0
}

func (c *Cursor) GetElements() []CursorElement {
	if c == nil {
		return nil
	}

	return c.elements
}

// WithElements sets the cursor elements explicitly.
func (c *Cursor) WithElements(elements []CursorElement) *Cursor {
	if c == nil {
		c = new(Cursor)
	}

	c.elements = elements

	return c
}

// validate checks the cursor against the columns of an order set.
func (c *Cursor) validate(columns []*Column) error {
	if c.IsEmpty() {
		return nil
	}

	// The cursor must name exactly the order set columns.
	if len(c.elements) != len(columns) {
		return fmt.Errorf("%w: column number mismatch, %d for %d", ErrInvalidCursor, len(c.elements), len(columns))
	}

	for i, elem := range c.elements {
		if elem.Column != columns[i].name {
			return fmt.Errorf("%w: unexpected column '%s'", ErrInvalidCursor, elem.Column)
		}
	}

	return nil
}

func (c *Cursor) values() []any {
	return lo.Map(c.elements, func(elem CursorElement, _ int) any { return elem.Value })
}

// PointAt resolves the cursor to a point of set.
func PointAt[T any](set *OrderSet[T], c *Cursor) (*Point[T], error) {
	if c.IsEmpty() {
		return nil, fmt.Errorf("%w: empty cursor", ErrInvalidCursor)
	}

	if err := c.validate(set.columns); err != nil {
		return nil, err
	}

	return set.AtValues(c.values())
}

var _ fmt.Stringer = (*Cursor)(nil)

// PaginationResult is a generic paginated result container.
type PaginationResult[T any] struct {
	// Items result elements.
	Items []T
	// Total number of elements.
	Total int64
	// AppliedLimit effective limit used for the query.
	AppliedLimit int
	// NextPageToken token for the next page, nil on the last page.
	NextPageToken *Cursor
}
