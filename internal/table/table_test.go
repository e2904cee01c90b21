package table

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

type row struct {
	Name   string
	City   string
	Amount decimal.Decimal
	Deals  int
	Rank   *int
}

func intp(v int) *int { return &v }

var columns = []Column[row]{
	{Key: "name", Value: func(r row) any { return r.Name }, Sortable: true},
	{Key: "city", Value: func(r row) any { return r.City }},
	{Key: "amount", Value: func(r row) any { return r.Amount }, Sortable: true},
	{Key: "deals", Value: func(r row) any { return r.Deals }, Sortable: true},
	{Key: "rank", Value: func(r row) any { return r.Rank }, Sortable: true},
	{Key: "nameLength", Sortable: true, Compare: func(a, b row) int { return len(a.Name) - len(b.Name) }},
}

func sampleRows() []row {
	return []row{
		{Name: "Rajesh", City: "Mumbai", Amount: decimal.NewFromInt(5000000), Deals: 2, Rank: intp(2)},
		{Name: "Anita", City: "Pune", Amount: decimal.NewFromInt(900000), Deals: 1},
		{Name: "Vikram", City: "Delhi", Amount: decimal.NewFromInt(25000000), Deals: 3, Rank: intp(1)},
		{Name: "Meera", City: "mumbai", Amount: decimal.NewFromInt(900000), Deals: 1},
	}
}

func names(rows []row) string {
	var out []string
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return strings.Join(out, ",")
}

func TestApply_Search(t *testing.T) {
	tbl := Table[row]{Columns: columns}

	tests := []struct {
		search string
		want   string
	}{
		{"", "Rajesh,Anita,Vikram,Meera"},
		{"MUMBAI", "Rajesh,Meera"},
		{"2500", "Vikram"},
		{"zzz", ""},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got := tbl.Apply(sampleRows(), Query{Search: tt.search})
			if names(got.Data) != tt.want {
				t.Errorf("Search %q = %q, want %q", tt.search, names(got.Data), tt.want)
			}
		})
	}
}

func TestApply_SearchFields(t *testing.T) {
	tbl := Table[row]{Columns: columns, Fields: func(r row) []any { return []any{r.City} }}
	got := tbl.Apply(sampleRows(), Query{Search: "raj"})
	if len(got.Data) != 0 {
		t.Errorf("expected Fields to restrict search, got %q", names(got.Data))
	}
}

func TestApply_Sort(t *testing.T) {
	tbl := Table[row]{Columns: columns}

	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"by name asc", Query{SortKey: "name"}, "Anita,Meera,Rajesh,Vikram"},
		{"by name desc", Query{SortKey: "name", Desc: true}, "Vikram,Rajesh,Meera,Anita"},
		{"decimal asc keeps ties stable", Query{SortKey: "amount"}, "Anita,Meera,Rajesh,Vikram"},
		{"decimal desc keeps ties stable", Query{SortKey: "amount", Desc: true}, "Vikram,Rajesh,Anita,Meera"},
		{"int desc", Query{SortKey: "deals", Desc: true}, "Vikram,Rajesh,Anita,Meera"},
		{"nil last asc", Query{SortKey: "rank"}, "Vikram,Rajesh,Anita,Meera"},
		{"nil last desc", Query{SortKey: "rank", Desc: true}, "Rajesh,Vikram,Anita,Meera"},
		{"custom comparator", Query{SortKey: "nameLength"}, "Anita,Meera,Rajesh,Vikram"},
		{"custom comparator desc", Query{SortKey: "nameLength", Desc: true}, "Rajesh,Vikram,Anita,Meera"},
		{"unsortable column ignored", Query{SortKey: "city"}, "Rajesh,Anita,Vikram,Meera"},
		{"unknown column ignored", Query{SortKey: "nope"}, "Rajesh,Anita,Vikram,Meera"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tbl.Apply(sampleRows(), tt.q)
			if names(got.Data) != tt.want {
				t.Errorf("got %q, want %q", names(got.Data), tt.want)
			}
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	rows := sampleRows()
	Table[row]{Columns: columns}.Apply(rows, Query{SortKey: "name"})
	if names(rows) != "Rajesh,Anita,Vikram,Meera" {
		t.Errorf("input reordered: %q", names(rows))
	}
}

func TestApply_Pagination(t *testing.T) {
	tbl := Table[row]{Columns: columns}
	var rows []row
	for i := 0; i < 23; i++ {
		rows = append(rows, row{Name: string(rune('a' + i))})
	}

	tests := []struct {
		name      string
		q         Query
		wantPage  int
		wantPages int
		wantLen   int
		wantSize  int
	}{
		{"default size", Query{}, 1, 3, 10, 10},
		{"last partial page", Query{Page: 3}, 3, 3, 3, 10},
		{"page beyond range resets", Query{Page: 9}, 1, 3, 10, 10},
		{"negative page", Query{Page: -1}, 1, 3, 10, 10},
		{"custom size", Query{PageSize: 5, Page: 5}, 5, 5, 3, 5},
		{"size capped", Query{PageSize: 1000}, 1, 1, 23, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tbl.Apply(rows, tt.q)
			if got.CurrentPage != tt.wantPage || got.TotalPages != tt.wantPages || len(got.Data) != tt.wantLen || got.PageSize != tt.wantSize {
				t.Errorf("page=%d pages=%d len=%d size=%d", got.CurrentPage, got.TotalPages, len(got.Data), got.PageSize)
			}
			if got.TotalRows != 23 {
				t.Errorf("TotalRows = %d", got.TotalRows)
			}
		})
	}
}

func TestApply_EmptyHasOnePage(t *testing.T) {
	got := Table[row]{Columns: columns}.Apply(nil, Query{Page: 2})
	if got.TotalPages != 1 || got.CurrentPage != 1 || len(got.Data) != 0 {
		t.Errorf("empty page = %+v", got)
	}
}

func TestParseQuery(t *testing.T) {
	v := url.Values{}
	v.Set("search", "  kumar ")
	v.Set("sort", "amount")
	v.Set("dir", "DESC")
	v.Set("page", "2")
	v.Set("pageSize", "oops")

	q := ParseQuery(v)
	if q.Search != "kumar" || q.SortKey != "amount" || !q.Desc || q.Page != 2 || q.PageSize != 0 {
		t.Errorf("ParseQuery = %+v", q)
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b any
		want int
	}{
		{1, 2, -1},
		{2.5, 2.5, 0},
		{int64(10), 9, 1},
		{"b", "a", 1},
		{decimal.NewFromInt(3), decimal.NewFromInt(3), 0},
		{false, true, -1},
	}
	for _, tc := range cases {
		if got := Compare(tc.a, tc.b); got != tc.want {
			t.Errorf("Compare(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
