package feed

import (
	"slices"
	"strings"
)

// AllFilter disables a category or region filter.
const AllFilter = "all"

// Page size bounds applied by Paginate.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SortOrder selects how a feed is ordered.
type SortOrder int

const (
	// SortNone keeps the input order.
	SortNone SortOrder = iota
	// SortDate orders by start instant, earliest first.
	SortDate
	// SortPopularity orders by attendee count, largest first.
	SortPopularity
)

func (o SortOrder) String() string {
	switch o {
	case SortDate:
		return "date"
	case SortPopularity:
		return "popularity"
	default:
		return "none"
	}
}

// SortKeys lists the accepted sort parameter values.
var SortKeys = []string{"date", "popularity", "attendees"}

// ParseSortOrder maps a query parameter to a SortOrder.  Empty or unknown
// values select SortDate.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "popularity", "attendees":
		return SortPopularity
	case "none":
		return SortNone
	default:
		return SortDate
	}
}

// Filters narrows a feed.  Empty fields and AllFilter match everything.
type Filters struct {
	Category string
	Region   string
	Text     string
}

// Query filters views and then orders the matches.  views is not modified.
func Query(views []EventView, f Filters, order SortOrder) []EventView {
	return Sort(Filter(views, f), order)
}

// Filter returns the views matching f, in input order.
func Filter(views []EventView, f Filters) []EventView {
	term := strings.ToLower(strings.TrimSpace(f.Text))
	out := make([]EventView, 0, len(views))
	for _, v := range views {
		if !matchesExact(f.Category, v.Category) || !matchesExact(f.Region, v.Region) {
			continue
		}
		if term != "" && !matchesText(v, term) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Sort returns a copy of views in the given order.  Equal keys keep their
// relative order.
func Sort(views []EventView, order SortOrder) []EventView {
	out := slices.Clone(views)
	if out == nil {
		out = []EventView{}
	}
	switch order {
	case SortDate:
		slices.SortStableFunc(out, func(a, b EventView) int {
			return a.StartsAt.Compare(b.StartsAt)
		})
	case SortPopularity:
		slices.SortStableFunc(out, func(a, b EventView) int {
			return b.Attendees - a.Attendees
		})
	}
	return out
}

// Paginate returns one page of views and the total count.  page starts at
// 1; pageSize is clamped to [1, MaxPageSize] with DefaultPageSize for
// non-positive values.
func Paginate(views []EventView, page, pageSize int) ([]EventView, int) {
	page, pageSize = PageBounds(page, pageSize)
	total := len(views)
	// compare page counts first so a huge page cannot overflow the offset
	if page-1 >= (total+pageSize-1)/pageSize {
		return []EventView{}, total
	}
	from := (page - 1) * pageSize
	to := min(from+pageSize, total)
	return slices.Clone(views[from:to]), total
}

// PageBounds applies the clamping rules of Paginate to a requested page
// and page size.
func PageBounds(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, min(pageSize, MaxPageSize)
}

func matchesExact(want, got string) bool {
	want = strings.TrimSpace(want)
	if want == "" || strings.EqualFold(want, AllFilter) {
		return true
	}
	return want == got
}

func matchesText(v EventView, term string) bool {
	return strings.Contains(strings.ToLower(v.Title), term) ||
		strings.Contains(strings.ToLower(v.Content), term) ||
		strings.Contains(strings.ToLower(v.Location), term)
}
