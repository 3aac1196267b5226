// file: services/paginator.go
package services

// Page is one slice of a bucket together with the paging chrome.
type Page[T any] struct {
	Items     []T `json:"items"`
	PageCount int `json:"pageCount"`
	Index     int `json:"index"`
}

// PageCount is never below 1, so an empty bucket still has a page to show.
func PageCount(n, size int) int {
	if size < 1 {
		size = 1
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// ClampIndex pulls index back inside [0, pageCount-1].
func ClampIndex(index, pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	if index >= pageCount {
		index = pageCount - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}

// WrapIndex moves index around the pages circularly.
func WrapIndex(index, pageCount int) int {
	if pageCount < 1 {
		return 0
	}
	index %= pageCount
	if index < 0 {
		index += pageCount
	}
	return index
}

// Paginate returns the page at index, clamped against the current length of items.
func Paginate[T any](items []T, size, index int) Page[T] {
	if size < 1 {
		size = 1
	}
	count := PageCount(len(items), size)
	idx := ClampIndex(index, count)

	start := min(idx*size, len(items))
	end := min(start+size, len(items))
	return Page[T]{
		Items:     items[start:end:end],
		PageCount: count,
		Index:     idx,
	}
}
