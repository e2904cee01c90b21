// Package table implements the search, sort and pagination rules shared by
// every list endpoint.
package table

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Column describes one sortable or searchable field of T.
type Column[T any] struct {
	Key      string
	Value    func(T) any
	Sortable bool
	// Compare overrides the natural ordering of Value when set. It must
	// return a negative, zero or positive number as a sorts before, with or
	// after b in ascending order.
	Compare func(a, b T) int
}

// Query is a list request as sent by a client.
type Query struct {
	Search   string
	SortKey  string
	Desc     bool
	Page     int
	PageSize int
}

// Page is one page of a filtered and sorted result.
type Page[T any] struct {
	Data        []T `json:"data"`
	TotalRows   int `json:"totalRows"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

// Table applies queries to rows of T.
type Table[T any] struct {
	Columns []Column[T]
	// Fields lists the values searched for a row. Without it the values of
	// every column are searched.
	Fields func(T) []any
}

// ParseQuery reads search, sort, dir, page and pageSize from query values.
func ParseQuery(v url.Values) Query {
	page, _ := strconv.Atoi(v.Get("page"))
	pageSize, _ := strconv.Atoi(v.Get("pageSize"))
	return Query{
		Search:   strings.TrimSpace(v.Get("search")),
		SortKey:  v.Get("sort"),
		Desc:     strings.EqualFold(v.Get("dir"), "desc"),
		Page:     page,
		PageSize: pageSize,
	}
}

// Apply filters, sorts and paginates rows without modifying the input slice.
func (t Table[T]) Apply(rows []T, q Query) Page[T] {
	filtered := t.filter(rows, q.Search)
	t.sort(filtered, q.SortKey, q.Desc)

	size := q.PageSize
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	totalPages := int(math.Max(1, math.Ceil(float64(len(filtered))/float64(size))))

	page := q.Page
	if page < 1 || page > totalPages {
		page = 1
	}
	start := (page - 1) * size
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page[T]{
		Data:        filtered[start:end],
		TotalRows:   len(filtered),
		TotalPages:  totalPages,
		CurrentPage: page,
		PageSize:    size,
	}
}

func (t Table[T]) filter(rows []T, search string) []T {
	out := make([]T, 0, len(rows))
	term := strings.ToLower(search)
	for _, row := range rows {
		if term == "" || t.matches(row, term) {
			out = append(out, row)
		}
	}
	return out
}

func (t Table[T]) matches(row T, term string) bool {
	var values []any
	if t.Fields != nil {
		values = t.Fields(row)
	} else {
		for _, c := range t.Columns {
			if c.Value != nil {
				values = append(values, c.Value(row))
			}
		}
	}
	for _, v := range values {
		if strings.Contains(strings.ToLower(stringOf(v)), term) {
			return true
		}
	}
	return false
}

func (t Table[T]) sort(rows []T, key string, desc bool) {
	if key == "" {
		return
	}
	var col *Column[T]
	for i := range t.Columns {
		if t.Columns[i].Key == key {
			col = &t.Columns[i]
			break
		}
	}
	if col == nil || !col.Sortable {
		return
	}
	dir := 1
	if desc {
		dir = -1
	}

	if col.Compare != nil {
		sort.SliceStable(rows, func(i, j int) bool {
			return col.Compare(rows[i], rows[j])*dir < 0
		})
		return
	}
	if col.Value == nil {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := col.Value(rows[i]), col.Value(rows[j])
		aNil, bNil := isNil(a), isNil(b)
		switch {
		case aNil && bNil:
			return false
		case aNil:
			return false
		case bNil:
			return true
		}
		return Compare(a, b)*dir < 0
	})
}

// Compare orders two non-nil values naturally: numbers numerically, times
// chronologically, everything else by string form.
func Compare(a, b any) int {
	a, b = deref(a), deref(b)
	switch av := a.(type) {
	case decimal.Decimal:
		if bv, ok := b.(decimal.Decimal); ok {
			return av.Cmp(bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	if af, ok := number(a); ok {
		if bf, ok := number(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(stringOf(a), stringOf(b))
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// deref follows pointers so that *int sorts and searches like int.
func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func stringOf(v any) string {
	v = deref(v)
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}
