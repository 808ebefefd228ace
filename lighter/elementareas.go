package lighter

import (
	"math/bits"

	"github.com/bits-and-blooms/bitset"
)

// ElementAreas stores the covered fraction of every element of a
// primitive. Most elements are either empty or fully covered, so only
// those in between keep a float; the rest is two bits per element.
type ElementAreas struct {
	count    int
	fullArea float32

	covered *bitset.BitSet // area > 0
	partial *bitset.BitSet // 0 < area < 1

	// areas of partial elements in element order, and the number of
	// partial elements before each 64 element word
	fractional []float32
	rank       []uint32
}

// NewElementAreas encodes the given dense areas. Values are clamped to [0,1].
func NewElementAreas(areas []float32) ElementAreas {
	ea := ElementAreas{
		count:   len(areas),
		covered: bitset.New(uint(len(areas))),
		partial: bitset.New(uint(len(areas))),
	}

	for i, a := range areas {
		if a <= 0 || a != a {
			continue
		}
		if a >= 1 {
			ea.covered.Set(uint(i))
			ea.fullArea += 1
			continue
		}
		ea.covered.Set(uint(i))
		ea.partial.Set(uint(i))
		ea.fractional = append(ea.fractional, a)
		ea.fullArea += a
	}

	words := ea.partial.Bytes()
	ea.rank = make([]uint32, len(words))
	var sum uint32
	for i, w := range words {
		ea.rank[i] = sum
		sum += uint32(bits.OnesCount64(w))
	}
	return ea
}

// Area returns the covered fraction of element i
func (ea *ElementAreas) Area(i int) float32 {
	if i < 0 || i >= ea.count || !ea.covered.Test(uint(i)) {
		return 0
	}
	if !ea.partial.Test(uint(i)) {
		return 1
	}
	word := i / 64
	below := ea.partial.Bytes()[word] & (uint64(1)<<(uint(i)%64) - 1)
	return ea.fractional[int(ea.rank[word])+bits.OnesCount64(below)]
}

// Len returns the number of elements
func (ea *ElementAreas) Len() int {
	return ea.count
}

// FullArea returns the sum of all element areas, in texels
func (ea *ElementAreas) FullArea() float32 {
	return ea.fullArea
}

// CoveredCount returns the number of elements with any coverage
func (ea *ElementAreas) CoveredCount() int {
	if ea.covered == nil {
		return 0
	}
	return int(ea.covered.Count())
}
