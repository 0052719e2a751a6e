package nova

import "math"

const (
	// Number of bins in the hash table. Cells are hashed into bins, so
	// distinct cells may share a bin.
	DEFAULT_HASH_CELLS = 1021

	// Bodies covering more cells than this are treated as oversized and
	// tested against every other body instead of being hashed.
	MAX_CELLS_PER_BODY = 64
)

type HashValue uint64

// SpaceHash is a uniform grid broadphase. Each body is inserted in every
// cell its bounding box touches; bodies that share a bin are tested.
type SpaceHash struct {
	numCells int
	celldim  float64

	table [][]*Body
	// bins written during the current query, cleared on the next one
	dirty []int

	oversized []*Body
	seen      map[PairKey]struct{}
}

func NewSpaceHash(celldim float64, cells int) *SpaceHash {
	assert(celldim > 0, "Cell size must be positive")
	if cells <= 0 {
		cells = DEFAULT_HASH_CELLS
	}
	return &SpaceHash{
		numCells: cells,
		celldim:  celldim,
		table:    make([][]*Body, cells),
		seen:     map[PairKey]struct{}{},
	}
}

func (hash *SpaceHash) CellSize() float64 {
	return hash.celldim
}

func hashFunc(x, y, n HashValue) HashValue {
	return (x*1640531513 ^ y*2654435789) % n
}

// cellRange returns the inclusive cell bounds of bb, or ok=false when the box
// is too large or not finite.
func (hash *SpaceHash) cellRange(bb BB) (l, b, r, t int64, ok bool) {
	dim := hash.celldim
	fl := math.Floor(bb.L / dim)
	fb := math.Floor(bb.B / dim)
	fr := math.Floor(bb.R / dim)
	ft := math.Floor(bb.T / dim)

	for _, f := range [...]float64{fl, fb, fr, ft} {
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > 1<<40 {
			return 0, 0, 0, 0, false
		}
	}
	if (fr-fl+1)*(ft-fb+1) > MAX_CELLS_PER_BODY {
		return 0, 0, 0, 0, false
	}
	return int64(fl), int64(fb), int64(fr), int64(ft), true
}

func (hash *SpaceHash) clearTable() {
	for _, idx := range hash.dirty {
		clear(hash.table[idx])
		hash.table[idx] = hash.table[idx][:0]
	}
	hash.dirty = hash.dirty[:0]
	clear(hash.oversized)
	hash.oversized = hash.oversized[:0]
	clear(hash.seen)
}

func (hash *SpaceHash) Pairs(bodies []*Body) []BodyPair {
	hash.clearTable()

	var pairs []BodyPair
	query := func(a, b *Body) {
		if EarlyOut(a, b) || !a.shape.bb.Intersects(b.shape.bb) {
			return
		}
		key := NewPairKey(a, b)
		if _, ok := hash.seen[key]; ok {
			return
		}
		hash.seen[key] = struct{}{}
		pairs = append(pairs, NewBodyPair(a, b))
	}

	n := HashValue(hash.numCells)
	for _, body := range bodies {
		l, b, r, t, ok := hash.cellRange(body.shape.bb)
		if !ok {
			hash.oversized = append(hash.oversized, body)
			continue
		}

		for i := l; i <= r; i++ {
			for j := b; j <= t; j++ {
				idx := int(hashFunc(HashValue(i), HashValue(j), n))
				bin := hash.table[idx]
				if len(bin) == 0 {
					hash.dirty = append(hash.dirty, idx)
				} else if bin[len(bin)-1] == body {
					// another cell of this body hashed to the same bin
					continue
				}

				for _, other := range bin {
					query(body, other)
				}
				hash.table[idx] = append(bin, body)
			}
		}
	}

	for _, big := range hash.oversized {
		for _, other := range bodies {
			query(big, other)
		}
	}

	sortPairs(pairs)
	return pairs
}
