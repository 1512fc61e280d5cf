// Package intern builds a QVD field's distinct-value symbol dictionary: the ordered,
// deduplicated list of values a column's record indices point into (spec.md §4.5 step
// 3, "collect NoOfSymbols distinct values in first-seen order"). It mirrors the
// teacher's metric-ID hashing split between a cheap xxHash64 lookup key
// (internal/hash.ID) and an explicit collision check guarding against two distinct
// values hashing alike (internal/collision.Tracker).
package intern

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/kongson-cheung/qvdgo/value"
)

// Interner assigns a stable, first-seen-order symbol index to each distinct
// value.Value it is given. It is not safe for concurrent use; one Interner serves one
// column.
type Interner struct {
	index   map[uint64][]entry // xxHash64(key) -> candidates sharing that hash
	symbols []value.Value      // first-seen order, also the index -> symbol mapping
}

type entry struct {
	key string
	idx int
}

// New returns an empty Interner.
func New() *Interner {
	return &Interner{index: make(map[uint64][]entry)}
}

// Intern returns the symbol index for v, assigning the next index the first time v
// (by key) is seen. Distinct values that hash alike are still distinguished: the full
// key, not just the hash, decides identity.
func (in *Interner) Intern(v value.Value) int {
	key := dedupeKey(v)
	h := xxhash.Sum64String(key)

	for _, e := range in.index[h] {
		if e.key == key {
			return e.idx
		}
	}

	idx := len(in.symbols)
	in.symbols = append(in.symbols, v)
	in.index[h] = append(in.index[h], entry{key: key, idx: idx})

	return idx
}

// Symbols returns the interned values in first-seen (assigned index) order.
func (in *Interner) Symbols() []value.Value {
	return in.symbols
}

// Len returns the number of distinct values interned so far.
func (in *Interner) Len() int {
	return len(in.symbols)
}

// Reset clears the interner for reuse on the next column.
func (in *Interner) Reset() {
	for k := range in.index {
		delete(in.index, k)
	}
	in.symbols = in.symbols[:0]
}

// dedupeKey renders v into a string that uniquely identifies its on-disk symbol
// identity: two values collapse to the same symbol iff their dedupeKey matches. Dual
// values key on their text half, matching the reference's _Symbol dict which is keyed
// by the materialized (text) representation regardless of the accompanying numeric
// payload.
func dedupeKey(v value.Value) string {
	switch v.Kind() {
	case value.KindNull:
		return "\x00"
	case value.KindInt32:
		n, _ := v.AsInt32()
		return "\x01" + strconv.FormatInt(int64(n), 10)
	case value.KindFloat64:
		f, _ := v.AsFloat64()
		return "\x02" + strconv.FormatFloat(f, 'b', -1, 64)
	default:
		text, _ := v.AsText()
		return "\x03" + text
	}
}
