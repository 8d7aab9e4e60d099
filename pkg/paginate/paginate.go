// Package paginate splits an ordered slice into fixed-size pages.
package paginate

import (
	"iter"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

// Paginator partitions items into contiguous pages of pageSize elements; the
// last page may be shorter. Pages alias the input and are capacity-clipped, so
// appending to one never overwrites its neighbour.
type Paginator[T any] struct {
	items    []T
	pageSize int
}

func New[T any](items []T, pageSize int) (*Paginator[T], error) {
	if pageSize <= 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidPageSize, "got %d", pageSize)
	}
	return &Paginator[T]{items: items, pageSize: pageSize}, nil
}

// Paginate is shorthand for New followed by collecting every page.
func Paginate[T any](items []T, pageSize int) ([][]T, error) {
	p, err := New(items, pageSize)
	if err != nil {
		return nil, err
	}
	pages := make([][]T, 0, p.Len())
	for page := range p.Pages() {
		pages = append(pages, page)
	}
	return pages, nil
}

// Len is the number of pages. An empty input has zero pages.
func (p *Paginator[T]) Len() int {
	return (len(p.items) + p.pageSize - 1) / p.pageSize
}

// Page returns page i (zero-based).
func (p *Paginator[T]) Page(i int) ([]T, bool) {
	if i < 0 || i >= p.Len() {
		return nil, false
	}
	start := i * p.pageSize
	end := min(start+p.pageSize, len(p.items))
	return p.items[start:end:end], true
}

// Pages yields every page in order. The sequence can be ranged over again.
func (p *Paginator[T]) Pages() iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		for i := range p.Len() {
			page, _ := p.Page(i)
			if !yield(page) {
				return
			}
		}
	}
}

// All yields (index, page) pairs.
func (p *Paginator[T]) All() iter.Seq2[int, []T] {
	return func(yield func(int, []T) bool) {
		for i := range p.Len() {
			page, _ := p.Page(i)
			if !yield(i, page) {
				return
			}
		}
	}
}
