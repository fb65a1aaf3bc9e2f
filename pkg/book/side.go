package book

import "github.com/google/btree"

const btreeDegree = 32

// bookSide holds one side's non-empty price levels in a btree ordered
// best-first: descending prices for bids, ascending for asks. Min() is
// therefore always the best level and Ascend walks in matching order.
type bookSide struct {
	tree *btree.BTreeG[*level]
	desc bool // true for bids
}

func newBookSide(desc bool) *bookSide {
	less := func(a, b *level) bool { return a.price < b.price }
	if desc {
		less = func(a, b *level) bool { return a.price > b.price }
	}
	return &bookSide{tree: btree.NewG(btreeDegree, less), desc: desc}
}

func (s *bookSide) get(price int32) (*level, bool) {
	return s.tree.Get(&level{price: price})
}

func (s *bookSide) getOrCreate(price int32) *level {
	if lv, ok := s.get(price); ok {
		return lv
	}
	lv := &level{price: price}
	s.tree.ReplaceOrInsert(lv)
	return lv
}

func (s *bookSide) removeLevel(price int32) {
	s.tree.Delete(&level{price: price})
}

func (s *bookSide) best() (*level, bool) {
	return s.tree.Min()
}

// each visits levels best-first until fn returns false.
func (s *bookSide) each(fn func(*level) bool) {
	s.tree.Ascend(fn)
}

func (s *bookSide) levels() int {
	return s.tree.Len()
}

// depth is the total open quantity across all levels on this side.
func (s *bookSide) depth() int64 {
	var total int64
	s.tree.Ascend(func(lv *level) bool {
		total += lv.totalQty
		return true
	})
	return total
}
