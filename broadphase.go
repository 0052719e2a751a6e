package nova

import (
	"fmt"
	"log"
	"slices"
	"strings"
)

// PairKey identifies an unordered pair of bodies by their ids.
type PairKey uint64

func NewPairKey(a, b *Body) PairKey {
	ida, idb := a.id, b.id
	if ida > idb {
		ida, idb = idb, ida
	}
	return PairKey(uint64(ida)<<32 | uint64(idb))
}

func (key PairKey) Ids() (uint32, uint32) {
	return uint32(key >> 32), uint32(key)
}

// BodyPair is a candidate pair produced by the broadphase, ordered so that
// A has the lower id.
type BodyPair struct {
	A, B *Body
}

func NewBodyPair(a, b *Body) BodyPair {
	if a.id > b.id {
		a, b = b, a
	}
	return BodyPair{A: a, B: b}
}

func (pair BodyPair) Key() PairKey {
	return NewPairKey(pair.A, pair.B)
}

// Broadphase produces the pairs of bodies whose bounding boxes overlap.
// Implementations must not return duplicates, self pairs or pairs rejected
// by EarlyOut.
type Broadphase interface {
	Pairs(bodies []*Body) []BodyPair
}

type BroadphaseKind int

const (
	BROADPHASE_SPATIAL_HASH BroadphaseKind = iota
	BROADPHASE_SWEEP_AND_PRUNE
	BROADPHASE_BRUTE_FORCE
)

var broadphaseNames = map[BroadphaseKind]string{
	BROADPHASE_SPATIAL_HASH:    "spatial_hash",
	BROADPHASE_SWEEP_AND_PRUNE: "sweep_and_prune",
	BROADPHASE_BRUTE_FORCE:     "brute_force",
}

func (kind BroadphaseKind) String() string {
	if name, ok := broadphaseNames[kind]; ok {
		return name
	}
	return fmt.Sprintf("BroadphaseKind(%d)", int(kind))
}

func ParseBroadphaseKind(name string) (BroadphaseKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range broadphaseNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown broadphase %q", name)
}

func (kind BroadphaseKind) MarshalText() ([]byte, error) {
	if _, ok := broadphaseNames[kind]; !ok {
		return nil, fmt.Errorf("unknown broadphase %d", int(kind))
	}
	return []byte(kind.String()), nil
}

func (kind *BroadphaseKind) UnmarshalText(text []byte) error {
	k, err := ParseBroadphaseKind(string(text))
	if err != nil {
		return err
	}
	*kind = k
	return nil
}

// NewBroadphase builds the strategy selected by kind. cellSize is only used
// by the spatial hash.
func NewBroadphase(kind BroadphaseKind, cellSize float64) Broadphase {
	switch kind {
	case BROADPHASE_SPATIAL_HASH:
		return NewSpaceHash(cellSize, DEFAULT_HASH_CELLS)
	case BROADPHASE_SWEEP_AND_PRUNE:
		return &SweepAndPrune{}
	case BROADPHASE_BRUTE_FORCE:
		return BruteForce{}
	}
	log.Println("Internal Error: unknown broadphase", int(kind), "falling back to brute force")
	return BruteForce{}
}

// EarlyOut reports whether a pair can be skipped without looking at its
// bounding boxes: the same body twice, two static bodies, two sleeping
// bodies, or a static body with a sleeping one.
func EarlyOut(a, b *Body) bool {
	if a == b {
		return true
	}
	aStill := a.kind == BODY_STATIC || a.sleeping
	bStill := b.kind == BODY_STATIC || b.sleeping
	return aStill && bStill
}

func sortPairs(pairs []BodyPair) {
	slices.SortFunc(pairs, func(p, q BodyPair) int {
		if p.A.id != q.A.id {
			return int(int64(p.A.id) - int64(q.A.id))
		}
		return int(int64(p.B.id) - int64(q.B.id))
	})
}

// BruteForce tests every pair. It is quadratic and serves as the reference
// the other strategies are checked against.
type BruteForce struct{}

func (BruteForce) Pairs(bodies []*Body) []BodyPair {
	var pairs []BodyPair
	for i := 0; i < len(bodies); i++ {
		a := bodies[i]
		for j := i + 1; j < len(bodies); j++ {
			b := bodies[j]
			if EarlyOut(a, b) {
				continue
			}
			if a.shape.bb.Intersects(b.shape.bb) {
				pairs = append(pairs, NewBodyPair(a, b))
			}
		}
	}
	sortPairs(pairs)
	return pairs
}

// SweepAndPrune sorts the bodies along the x axis and only tests bodies
// whose x intervals overlap.
type SweepAndPrune struct {
	sorted []*Body
}

func (sap *SweepAndPrune) Pairs(bodies []*Body) []BodyPair {
	sap.sorted = append(sap.sorted[:0], bodies...)
	slices.SortStableFunc(sap.sorted, func(a, b *Body) int {
		la, lb := a.shape.bb.L, b.shape.bb.L
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	})

	var pairs []BodyPair
	for i, a := range sap.sorted {
		abb := a.shape.bb
		for _, b := range sap.sorted[i+1:] {
			bbb := b.shape.bb
			if bbb.L > abb.R {
				break
			}
			if EarlyOut(a, b) {
				continue
			}
			if abb.Intersects(bbb) {
				pairs = append(pairs, NewBodyPair(a, b))
			}
		}
	}

	// drop references so removed bodies can be collected
	clear(sap.sorted)
	sortPairs(pairs)
	return pairs
}
