// Package track maintains per-aircraft state built up from decoded Mode S
// messages: source-tier-aware field validity, CPR position resolution,
// and a speed-gated plausibility check on new positions.
package track

import (
	"math"

	"modes1090/modes"
)

// validityMeta is the subset of a Validity[T]'s bookkeeping needed to
// compare or combine it against a Validity of a different content type,
// mirroring the grounding source's same_source/combine_validity/
// compare_validity operating across boxes of unlike T.
type validityMeta interface {
	Source() modes.DataSource
	UpdatedAt() int64
	StaleAt() int64
	ExpiresAt() int64
}

// Validity wraps a field value with the tracker's source-tier staleness
// rules: a field only accepts an update from a lower-trust source once its
// current value has gone stale, and carries separate stale/expires
// horizons so a display layer can grey out aging data before dropping it.
type Validity[T any] struct {
	source   modes.DataSource
	updated  int64
	stale    int64
	expires  int64
	contents T
	hasValue bool
}

func (v *Validity[T]) Source() modes.DataSource { return v.source }
func (v *Validity[T]) UpdatedAt() int64         { return v.updated }
func (v *Validity[T]) StaleAt() int64           { return v.stale }
func (v *Validity[T]) ExpiresAt() int64         { return v.expires }

// IsValid reports whether this field has ever been set by a real source.
func (v *Validity[T]) IsValid() bool {
	return v.source != modes.SourceInvalid
}

// Get returns the current contents and whether they are valid.
func (v *Validity[T]) Get() (T, bool) {
	return v.contents, v.IsValid()
}

// DirectSet overwrites the contents without touching validity bookkeeping,
// used when a value is derived rather than sourced from a message.
func (v *Validity[T]) DirectSet(val T) {
	v.contents = val
	v.hasValue = true
}

// DirectSetSource overwrites only the source tier, used to invalidate a
// field in place (set it to SourceInvalid) without losing its last value.
func (v *Validity[T]) DirectSetSource(src modes.DataSource) {
	v.source = src
}

// Update applies f to the contents if source is trusted enough to
// supersede whatever is already staged: either it is at least as good as
// the current source, or the current value has already gone stale. It
// reports whether the update was applied.
func (v *Validity[T]) Update(source modes.DataSource, nowMs int64, f func(*T)) bool {
	if source < v.source && nowMs < v.stale {
		return false
	}
	v.source = source
	v.updated = nowMs
	v.stale = nowMs + 60000
	v.expires = nowMs + 70000
	f(&v.contents)
	v.hasValue = true
	return true
}

// IsValidWithConstraints additionally requires a minimum source tier and
// that the value is no older than maxAgeMs.
func (v *Validity[T]) IsValidWithConstraints(nowMs, maxAgeMs int64, minSource modes.DataSource) bool {
	return v.IsValid() && v.source >= minSource && !(v.updated < nowMs && nowMs-v.updated > maxAgeMs)
}

// DataAge returns how old the current value is, or MaxInt64 if never set.
func (v *Validity[T]) DataAge(nowMs int64) int64 {
	if !v.IsValid() {
		return math.MaxInt64
	}
	if v.updated > nowMs {
		return 0
	}
	return nowMs - v.updated
}

// TimeBetween returns the absolute gap between this field's last update
// and other's, regardless of which box's content type.
func (v *Validity[T]) TimeBetween(other validityMeta) int64 {
	if v.updated > other.UpdatedAt() {
		return v.updated - other.UpdatedAt()
	}
	return other.UpdatedAt() - v.updated
}

// SameSource reports whether both boxes were last set from the same
// source tier.
func (v *Validity[T]) SameSource(other validityMeta) bool {
	return v.source == other.Source()
}

// CopyValidityFrom adopts another box's bookkeeping without touching its
// own contents, used when a position's validity should track the CPR
// fragment it was derived from.
func (v *Validity[T]) CopyValidityFrom(other validityMeta) {
	v.source = other.Source()
	v.updated = other.UpdatedAt()
	v.stale = other.StaleAt()
	v.expires = other.ExpiresAt()
}

// CombineValidity sets this box's bookkeeping to the worse of from1/from2:
// the lower source tier, the later update time, and the earlier stale/
// expiry horizons. If either input is invalid, the other's bookkeeping is
// used outright.
func (v *Validity[T]) CombineValidity(from1, from2 validityMeta) {
	if from1.Source() == modes.SourceInvalid {
		v.source, v.updated, v.stale, v.expires = from2.Source(), from2.UpdatedAt(), from2.StaleAt(), from2.ExpiresAt()
		return
	}
	if from2.Source() == modes.SourceInvalid {
		v.source, v.updated, v.stale, v.expires = from1.Source(), from1.UpdatedAt(), from1.StaleAt(), from1.ExpiresAt()
		return
	}
	v.source = minSource(from1.Source(), from2.Source())
	v.updated = maxInt64(from1.UpdatedAt(), from2.UpdatedAt())
	v.stale = minInt64(from1.StaleAt(), from2.StaleAt())
	v.expires = minInt64(from1.ExpiresAt(), from2.ExpiresAt())
}

// CompareValidity ranks this box against other at time nowMs: a still-
// fresh higher source tier wins outright, then the more recently updated
// box wins, else they're equal. Returns 1, -1, or 0.
func (v *Validity[T]) CompareValidity(other validityMeta, nowMs int64) int {
	switch {
	case nowMs < v.stale && v.source > other.Source():
		return 1
	case nowMs < other.StaleAt() && v.source < other.Source():
		return -1
	case v.updated > other.UpdatedAt():
		return 1
	case v.updated < other.UpdatedAt():
		return -1
	default:
		return 0
	}
}

func minSource(a, b modes.DataSource) modes.DataSource {
	if a < b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
