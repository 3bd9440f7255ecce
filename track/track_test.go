package track

import (
	"testing"

	"modes1090/modes"
)

func TestValidityRejectsLowerSourceWhileFresh(t *testing.T) {
	var v Validity[int]
	v.Update(modes.SourceADSB, 1000, func(x *int) { *x = 42 })
	applied := v.Update(modes.SourceMLAT, 1500, func(x *int) { *x = 99 })
	if applied {
		t.Fatalf("expected a lower-trust update to be rejected while still fresh")
	}
	got, _ := v.Get()
	if got != 42 {
		t.Fatalf("expected value to remain 42, got %d", got)
	}
}

func TestValidityAcceptsLowerSourceOnceStale(t *testing.T) {
	var v Validity[int]
	v.Update(modes.SourceADSB, 1000, func(x *int) { *x = 42 })
	applied := v.Update(modes.SourceMLAT, 1000+60001, func(x *int) { *x = 99 })
	if !applied {
		t.Fatalf("expected a lower-trust update to be accepted once stale")
	}
}

func TestCombineValidityTakesWorseOfBoth(t *testing.T) {
	var a, b, out Validity[int]
	a.Update(modes.SourceADSB, 1000, func(x *int) { *x = 1 })
	b.Update(modes.SourceModeS, 2000, func(x *int) { *x = 2 })
	out.CombineValidity(&a, &b)
	if out.Source() != modes.SourceModeS {
		t.Fatalf("expected combined source to be the worse tier (ModeS), got %v", out.Source())
	}
	if out.UpdatedAt() != 2000 {
		t.Fatalf("expected combined updated time to be the later of the two, got %d", out.UpdatedAt())
	}
}

func TestRegistryCreatesAndUpdatesAircraft(t *testing.T) {
	r := NewRegistry()
	msg := &modes.Message{
		ICAO:          0xABCDEF,
		Source:        modes.SourceADSB,
		FlightValid:   true,
		Flight:        "TEST123",
		AltitudeValid: true,
		Altitude:      35000,
		AltitudeUnit:  "ft",
	}

	a := r.Update(msg, 1000)
	if a.Addr != 0xABCDEF {
		t.Fatalf("expected addr 0xABCDEF, got %06X", a.Addr)
	}
	if cs, ok := a.Callsign.Get(); !ok || cs != "TEST123" {
		t.Fatalf("expected callsign TEST123, got %q valid=%v", cs, ok)
	}
	if alt, ok := a.Altitude.Get(); !ok || alt.Feet != 35000 {
		t.Fatalf("expected altitude 35000, got %v valid=%v", alt, ok)
	}
	if r.Count() != 1 {
		t.Fatalf("expected exactly one tracked aircraft, got %d", r.Count())
	}

	second := r.Update(msg, 2000)
	if second != a {
		t.Fatalf("expected the same aircraft pointer to be reused on a second message")
	}
	if a.Messages != 2 {
		t.Fatalf("expected message count 2, got %d", a.Messages)
	}
}

func TestSpeedCheckAllowsUnconstrainedFirstFix(t *testing.T) {
	a := &Aircraft{}
	if !speedCheck(a, 10, 10, 1000, false) {
		t.Fatalf("expected speedCheck to allow a position when there is no prior reference")
	}
}

func TestSpeedCheckRejectsImplausibleJump(t *testing.T) {
	a := &Aircraft{}
	a.Position.Update(modes.SourceADSB, 1000, func(p *PositionFix) {
		*p = PositionFix{Lat: 0, Lon: 0, NUCp: 7}
	})
	// 10 degrees of longitude at the equator is roughly 1100km, far beyond
	// what one second at any plausible airborne speed could cover.
	if speedCheck(a, 0, 10, 1001, false) {
		t.Fatalf("expected speedCheck to reject an implausible one-second jump")
	}
}

func TestGreatcircleZeroForSamePoint(t *testing.T) {
	if d := greatcircle(40, -74, 40, -74); d != 0 {
		t.Fatalf("expected zero distance for identical points, got %v", d)
	}
}
