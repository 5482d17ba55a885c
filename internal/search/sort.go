package search

import (
	"sort"

	"github.com/kkolinko/jtrac/internal/model"
)

// SortItemsByOption orders items by the display rank of their value for an
// enumerated field. Items with no value, or with a key the field no longer
// defines, rank before everything else. The sort is stable so the storage
// ordering breaks ties.
func SortItemsByOption(items []*model.Item, field *model.Field, descending bool) {
	rank := func(it *model.Item) int {
		key, ok := it.OptionKey(field.Key)
		if !ok {
			return -1
		}
		return field.OptionRank(key)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if descending {
			return rank(items[i]) > rank(items[j])
		}
		return rank(items[i]) < rank(items[j])
	})
}

// PageSlice cuts one page out of a fully materialized result. A page past
// the end is empty, not an error.
func PageSlice[T any](all []T, page, pageSize int) []T {
	if pageSize == PageSizeUnbounded {
		return all
	}
	start := page * pageSize
	if start >= len(all) {
		return nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
