// Package icaofilter implements a two-generation open-addressed set of
// recently-seen 24-bit ICAO addresses, used to probabilistically accept
// frames whose CRC cannot be checked directly.
package icaofilter

import "github.com/sirupsen/logrus"

// Size is the capacity of each generation, fixed per the original design.
const Size = 4096

// Filter holds the active and aging generations of the address set.
type Filter struct {
	active [Size]uint32
	aging  [Size]uint32
}

// New returns an empty filter.
func New() *Filter {
	return &Filter{}
}

// hash is the Jenkins one-at-a-time hash over the three address bytes,
// masked to Size-1.
func hash(a uint32) uint32 {
	var h uint32
	for shift := 16; shift >= 0; shift -= 8 {
		b := byte(a >> uint(shift))
		h += uint32(b)
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h & (Size - 1)
}

// Add inserts a into the active generation via linear probing, stopping
// at the first empty or matching slot. It also performs a second
// insertion with the top byte masked off (a & 0x00FFFF) to accommodate
// DF20/21 data-parity addresses, which may arrive with the top byte
// corrupted by the interrogator's PI field.
func (f *Filter) Add(a uint32) {
	f.insert(a)
	f.insert(a & 0x00FFFF)
}

func (f *Filter) insert(a uint32) {
	h := hash(a)
	for i := uint32(0); i < Size; i++ {
		slot := (h + i) % Size
		if f.active[slot] == 0 || f.active[slot] == a {
			f.active[slot] = a
			return
		}
	}
	logrus.Warnf("icaofilter: active generation full, dropping insert of %06x", a)
}

// Test reports whether a has been seen in either generation.
func (f *Filter) Test(a uint32) bool {
	return probe(&f.active, a) || probe(&f.aging, a)
}

func probe(table *[Size]uint32, a uint32) bool {
	h := hash(a)
	for i := uint32(0); i < Size; i++ {
		slot := (h + i) % Size
		if table[slot] == 0 {
			return false
		}
		if table[slot] == a {
			return true
		}
	}
	return false
}

// Flush zeroes the active generation. Tests that require deterministic
// repeatability call this at the start of a run.
func (f *Filter) Flush() {
	f.active = [Size]uint32{}
}

// Rotate moves the active generation into the aging slot and clears the
// active one, per the lifecycle note in the data model: the active
// generation may be periodically rotated (e.g. every 60s) so that
// addresses age out of the filter over time rather than accumulating
// forever.
func (f *Filter) Rotate() {
	f.aging = f.active
	f.active = [Size]uint32{}
}
