package memo

import (
	"strconv"
	"strings"
)

const DefaultPageSize = 10

// Query selects a page of the owner-scoped set.
type Query struct {
	Search  string
	Page    int
	PerPage int
}

// Page is one slice of an ordered result plus navigation metadata.
type Page struct {
	Items       []Memo
	Number      int
	PerPage     int
	TotalItems  int
	TotalPages  int
	HasNext     bool
	HasPrevious bool
}

func (p Page) NextNumber() int {
	if !p.HasNext {
		return p.Number
	}
	return p.Number + 1
}

func (p Page) PreviousNumber() int {
	if !p.HasPrevious {
		return p.Number
	}
	return p.Number - 1
}

// StartIndex is the 1-based position of the first item on the page, 0 when empty.
func (p Page) StartIndex() int {
	if p.TotalItems == 0 {
		return 0
	}
	return (p.Number-1)*p.PerPage + 1
}

// ParsePage reads a page query parameter; anything unusable becomes 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Window resolves the requested page against total items. Pages past the end
// clamp to the last page; an empty set has a single empty page.
func Window(total, requested, perPage int) (number, totalPages, offset int) {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	totalPages = (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	number = requested
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}
	return number, totalPages, (number - 1) * perPage
}

func newPage(items []Memo, number, perPage, total, totalPages int) Page {
	return Page{
		Items:       items,
		Number:      number,
		PerPage:     perPage,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNext:     number < totalPages,
		HasPrevious: number > 1,
	}
}

// Paginate slices an already ordered sequence.
func Paginate(items []Memo, requested, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	number, totalPages, offset := Window(len(items), requested, perPage)
	end := offset + perPage
	if end > len(items) {
		end = len(items)
	}
	return newPage(items[offset:end], number, perPage, len(items), totalPages)
}
