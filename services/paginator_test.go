// file: services/paginator_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate_SevenBySize4(t *testing.T) {
	items := seq(7)

	p0 := Paginate(items, 4, 0)
	assert.Equal(t, 2, p0.PageCount)
	assert.Equal(t, []int{0, 1, 2, 3}, p0.Items)

	p1 := Paginate(items, 4, 1)
	assert.Equal(t, []int{4, 5, 6}, p1.Items)
	assert.Equal(t, 1, p1.Index)
}

func TestPaginate_Completeness(t *testing.T) {
	for n := 0; n <= 13; n++ {
		for size := 1; size <= 6; size++ {
			items := seq(n)
			var joined []int
			count := PageCount(n, size)
			for i := 0; i < count; i++ {
				joined = append(joined, Paginate(items, size, i).Items...)
			}
			if n == 0 {
				assert.Empty(t, joined)
				continue
			}
			assert.Equal(t, items, joined, "n=%d size=%d", n, size)
		}
	}
}

func TestPaginate_ClampsWhenBucketShrinks(t *testing.T) {
	// Was on page 3 of 12 items at size 3; the bucket drops to 5 items.
	p := Paginate(seq(5), 3, 3)
	assert.Equal(t, 1, p.Index)
	assert.Equal(t, []int{3, 4}, p.Items)
	assert.NotEmpty(t, p.Items)
}

func TestPaginate_EmptyAndBadInput(t *testing.T) {
	p := Paginate([]int{}, 4, 2)
	assert.Equal(t, 1, p.PageCount)
	assert.Equal(t, 0, p.Index)
	assert.Empty(t, p.Items)

	p = Paginate(seq(3), 0, -5)
	assert.Equal(t, 3, p.PageCount, "size floors at 1")
	assert.Equal(t, 0, p.Index, "negative index clamps to 0")
}

func TestWrapIndex(t *testing.T) {
	assert.Equal(t, 0, WrapIndex(3, 3))
	assert.Equal(t, 2, WrapIndex(-1, 3))
	assert.Equal(t, 1, WrapIndex(7, 3))
	assert.Equal(t, 0, WrapIndex(5, 0))
}
