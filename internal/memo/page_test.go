package memo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	cases := []struct {
		name       string
		total      int
		requested  int
		perPage    int
		wantNumber int
		wantPages  int
		wantOffset int
	}{
		{"empty set has one page", 0, 1, 10, 1, 1, 0},
		{"first page", 25, 1, 10, 1, 3, 0},
		{"middle page", 25, 2, 10, 2, 3, 10},
		{"past the end clamps", 25, 99, 10, 3, 3, 20},
		{"zero becomes first", 25, 0, 10, 1, 3, 0},
		{"exact multiple", 20, 2, 10, 2, 2, 10},
		{"default page size", 11, 2, 0, 2, 2, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			number, pages, offset := Window(tc.total, tc.requested, tc.perPage)
			assert.Equal(t, tc.wantNumber, number)
			assert.Equal(t, tc.wantPages, pages)
			assert.Equal(t, tc.wantOffset, offset)
		})
	}
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 1, ParsePage("-3"))
	assert.Equal(t, 4, ParsePage(" 4 "))
}

func TestPaginate(t *testing.T) {
	items := make([]Memo, 23)
	for i := range items {
		items[i] = Memo{ID: int64(i + 1)}
	}
	page := Paginate(items, 3, 10)
	assert.Equal(t, 3, page.Number)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, int64(21), page.Items[0].ID)
	assert.False(t, page.HasNext)
	assert.Equal(t, 2, page.PreviousNumber())
	assert.Equal(t, 3, page.NextNumber())
	assert.Equal(t, 21, page.StartIndex())

	empty := Paginate(nil, 5, 10)
	assert.Equal(t, 1, empty.Number)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Empty(t, empty.Items)
	assert.False(t, empty.HasPrevious)
	assert.Equal(t, 0, empty.StartIndex())
}
