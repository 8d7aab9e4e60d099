package paginate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

func TestPaginate_FiveByTwo(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	pages, err := Paginate(items, 2)
	require.NoError(t, err)

	want := [][]int{{1, 2}, {3, 4}, {5}}
	if diff := cmp.Diff(want, pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}

	var flat []int
	for _, p := range pages {
		flat = append(flat, p...)
	}
	assert.Equal(t, items, flat)
}

func TestPaginate_Sizes(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		size  int
		sizes []int
	}{
		{"empty", 0, 3, nil},
		{"exact", 4, 2, []int{2, 2}},
		{"single page", 3, 10, []int{3}},
		{"page of one", 3, 1, []int{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(make([]string, tt.n), tt.size)
			require.NoError(t, err)
			var got []int
			for page := range p.Pages() {
				got = append(got, len(page))
			}
			assert.Equal(t, tt.sizes, got)
			assert.Equal(t, len(tt.sizes), p.Len())
		})
	}
}

func TestNew_InvalidPageSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := New([]int{1}, size)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidPageSize), "size %d", size)
	}
}

func TestPages_Restartable(t *testing.T) {
	p, err := New([]int{1, 2, 3}, 2)
	require.NoError(t, err)

	count := func() int {
		n := 0
		for range p.Pages() {
			n++
		}
		return n
	}
	assert.Equal(t, 2, count())
	assert.Equal(t, 2, count())
}

func TestPages_EarlyBreak(t *testing.T) {
	p, err := New([]int{1, 2, 3, 4, 5}, 1)
	require.NoError(t, err)

	var seen []int
	for i, page := range p.All() {
		if i == 2 {
			break
		}
		seen = append(seen, page[0])
	}
	assert.Equal(t, []int{1, 2}, seen)
}

func TestPage_CapacityClipped(t *testing.T) {
	items := []int{1, 2, 3, 4}
	p, err := New(items, 2)
	require.NoError(t, err)

	first, ok := p.Page(0)
	require.True(t, ok)
	_ = append(first, 99)
	assert.Equal(t, []int{1, 2, 3, 4}, items)

	_, ok = p.Page(2)
	assert.False(t, ok)
	_, ok = p.Page(-1)
	assert.False(t, ok)
}
