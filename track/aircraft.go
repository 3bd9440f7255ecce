package track

import (
	"sync"

	"modes1090/cpr"
	"modes1090/modes"
)

// AltitudeReading pairs a barometric altitude with its Mode C hundred-foot
// bucket, used to notice when the bucket changes (a cue the original
// Mode-A/C correlator uses to reset its hit count).
type AltitudeReading struct {
	Feet   int32
	ModeC  int32
}

// VertRateReading is a signed climb/descent rate and which altitude
// source it was derived from.
type VertRateReading struct {
	FeetPerMinute int
	Source        modes.AltitudeSource
}

// CPRFragment is one half (odd or even) of a CPR position report, kept
// around until its matching half arrives or it goes stale.
type CPRFragment struct {
	Type CprType
	Lat  uint32
	Lon  uint32
	NUCp uint32
}

// CprType mirrors modes.CprType, named locally so track's public surface
// doesn't require importing modes just to read a fragment's kind.
type CprType = modes.CprType

// PositionFix is a resolved latitude/longitude with the worst NUCp of the
// two CPR fragments that produced it (for a local decode, the worse of the
// single fragment's and the reference position's NUCp).
type PositionFix struct {
	Lat  float64
	Lon  float64
	NUCp uint32
}

// Aircraft is the accumulated state for one ICAO (or non-ICAO, e.g. TIS-B
// track file) address.
type Aircraft struct {
	Addr     uint32
	AddrType modes.AddrType

	Seen     int64 // ms
	Messages uint64

	signalLevels [8]float64
	signalIdx    int

	Callsign        Validity[string]
	Altitude        Validity[AltitudeReading]
	AltitudeGNSS    Validity[int32]
	GNSSDelta       Validity[int32]
	Speed           Validity[uint32]
	SpeedIAS        Validity[uint32]
	SpeedTAS        Validity[uint32]
	Heading         Validity[float64]
	HeadingMagnetic Validity[float64]
	VertRate        Validity[VertRateReading]
	Squawk          Validity[uint16]
	Category        Validity[uint8]
	AirGround       Validity[modes.AirGround]

	CPROdd  Validity[CPRFragment]
	CPREven Validity[CPRFragment]

	Position Validity[PositionFix]

	FirstMessage *modes.Message
}

// PushSignalLevel records a signal strength sample into the trailing
// 8-sample ring used for a display's signal bar.
func (a *Aircraft) PushSignalLevel(x float64) {
	a.signalLevels[a.signalIdx] = x
	a.signalIdx = (a.signalIdx + 1) % len(a.signalLevels)
}

// Registry is the process-wide set of tracked aircraft, keyed by address.
type Registry struct {
	mu        sync.Mutex
	aircrafts map[uint32]*Aircraft
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{aircrafts: make(map[uint32]*Aircraft)}
}

// Count returns the number of tracked aircraft.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.aircrafts)
}

// Snapshot returns a copy of the current aircraft pointers, safe to range
// over without holding the registry lock (callers must still respect that
// the Aircraft values themselves are mutated under the registry lock).
func (r *Registry) Snapshot() []*Aircraft {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Aircraft, 0, len(r.aircrafts))
	for _, a := range r.aircrafts {
		out = append(out, a)
	}
	return out
}

// Get returns the tracked aircraft for addr, if any.
func (r *Registry) Get(addr uint32) (*Aircraft, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.aircrafts[addr]
	return a, ok
}

// Update folds a decoded message into the registry's aircraft state,
// creating a new entry on first sight of an address. nowMs is the
// message's Mode S clock timestamp converted to milliseconds.
func (r *Registry) Update(msg *modes.Message, nowMs int64) *Aircraft {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.aircrafts[msg.ICAO]
	if !ok {
		a = &Aircraft{Addr: msg.ICAO, AddrType: msg.AddrType}
		first := *msg
		a.FirstMessage = &first
		r.aircrafts[msg.ICAO] = a
	}

	updateAircraft(a, msg, nowMs)
	return a
}

// updateAircraft applies one message's fields to a, in the order the
// grounding source applies them: bookkeeping, then per-field validity
// updates, then derived fields, then position.
func updateAircraft(a *Aircraft, msg *modes.Message, nowMs int64) {
	if msg.SignalLevel > 0 {
		a.PushSignalLevel(msg.SignalLevel)
	}
	a.Seen = nowMs
	a.Messages++

	// Addr type only ever moves towards a more-direct classification.
	if msg.AddrType < a.AddrType {
		a.AddrType = msg.AddrType
	}

	if msg.AltitudeValid && msg.AltitudeUnit == "ft" {
		a.Altitude.Update(msg.Source, nowMs, func(r *AltitudeReading) {
			r.Feet = int32(msg.Altitude)
			r.ModeC = (r.Feet + 49) / 100
		})
	}

	if msg.SquawkValid {
		a.Squawk.Update(msg.Source, nowMs, func(s *uint16) { *s = msg.Squawk })
	}

	if msg.AltitudeGNSSValid {
		a.AltitudeGNSS.Update(msg.Source, nowMs, func(v *int32) { *v = int32(msg.AltitudeGNSS) })
	}

	if msg.GNSSDeltaValid {
		a.GNSSDelta.Update(msg.Source, nowMs, func(v *int32) { *v = int32(msg.GNSSDelta) })
	}

	if msg.HeadingValid {
		if msg.HeadingSource == modes.HeadingMagnetic {
			a.HeadingMagnetic.Update(msg.Source, nowMs, func(v *float64) { *v = msg.Heading })
		} else {
			a.Heading.Update(msg.Source, nowMs, func(v *float64) { *v = msg.Heading })
		}
	}

	if msg.SpeedValid {
		switch msg.SpeedSource {
		case modes.SpeedIASSource:
			a.SpeedIAS.Update(msg.Source, nowMs, func(v *uint32) { *v = msg.Speed })
		case modes.SpeedTASSource:
			a.SpeedTAS.Update(msg.Source, nowMs, func(v *uint32) { *v = msg.Speed })
		default:
			a.Speed.Update(msg.Source, nowMs, func(v *uint32) { *v = msg.Speed })
		}
	}

	if msg.VertRateValid {
		a.VertRate.Update(msg.Source, nowMs, func(v *VertRateReading) {
			v.FeetPerMinute = msg.VertRate
			v.Source = msg.VertRateSource
		})
	}

	if msg.CategoryValid {
		a.Category.Update(msg.Source, nowMs, func(v *uint8) { *v = msg.Category })
	}

	if msg.AirGroundValid {
		a.AirGround.Update(msg.Source, nowMs, func(v *modes.AirGround) { *v = msg.AirGround })
	}

	if msg.FlightValid {
		a.Callsign.Update(msg.Source, nowMs, func(v *string) { *v = msg.Flight })
	}

	if msg.RawCPRValid {
		frag := CPRFragment{Type: msg.RawCPRType, Lat: msg.RawCPRLat, Lon: msg.RawCPRLon, NUCp: msg.RawCPRNUCp}
		if msg.RawCPROdd {
			a.CPROdd.Update(msg.Source, nowMs, func(v *CPRFragment) { *v = frag })
		} else {
			a.CPREven.Update(msg.Source, nowMs, func(v *CPRFragment) { *v = frag })
		}
	}

	// Derive GNSS altitude from baro + delta when both are fresher than
	// the last GNSS reading.
	if a.Altitude.CompareValidity(&a.AltitudeGNSS, nowMs) > 0 &&
		a.GNSSDelta.CompareValidity(&a.AltitudeGNSS, nowMs) > 0 {
		if baro, ok := a.Altitude.Get(); ok {
			if delta, ok := a.GNSSDelta.Get(); ok {
				a.AltitudeGNSS.DirectSet(baro.Feet + delta)
				a.AltitudeGNSS.CombineValidity(&a.Altitude, &a.GNSSDelta)
			}
		}
	}

	if msg.RawCPRValid {
		updatePosition(a, msg, nowMs)
	}
}

// updatePosition attempts global (even/odd pair) CPR decode first, falling
// back to a local/relative decode against the aircraft's last known
// position.
func updatePosition(a *Aircraft, msg *modes.Message, nowMs int64) {
	surface := msg.RawCPRType == modes.CprSurface

	maxElapsed := int64(10000)
	if surface {
		maxElapsed = 25000
		if msg.SpeedValid && msg.Speed <= 25 {
			maxElapsed = 50000
		}
	}

	even, evenOK := a.CPREven.Get()
	odd, oddOK := a.CPROdd.Get()
	sameType := evenOK && oddOK && even.Type == odd.Type

	locationResult := -1
	var newLat, newLon float64
	var newNUC uint32
	cprRelative := false

	if a.CPROdd.IsValid() && a.CPREven.IsValid() && a.CPROdd.SameSource(&a.CPREven) &&
		sameType && a.CPROdd.TimeBetween(&a.CPREven) <= maxElapsed {
		locationResult = doGlobalCPR(a, msg, nowMs, &newLat, &newLon, &newNUC)

		switch {
		case locationResult == -2:
			a.CPREven.DirectSetSource(modes.SourceInvalid)
			a.CPROdd.DirectSetSource(modes.SourceInvalid)
			a.Position.DirectSetSource(modes.SourceInvalid)
			return
		case locationResult == -1:
			// Crossed zones or no local reference for surface; try again
			// once a fresher pair arrives.
		default:
			a.Position.CombineValidity(&a.CPREven, &a.CPROdd)
		}
	}

	if locationResult == -1 {
		locationResult = doLocalCPR(a, msg, nowMs, &newLat, &newLon, &newNUC)
		if locationResult >= 0 {
			cprRelative = true
			if msg.RawCPROdd {
				a.Position.CopyValidityFrom(&a.CPROdd)
			} else {
				a.Position.CopyValidityFrom(&a.CPREven)
			}
		}
	}

	if locationResult == 0 {
		msg.DecodedCPRValid = true
		msg.DecodedLat = newLat
		msg.DecodedLon = newLon
		msg.DecodedLocal = cprRelative
		a.Position.DirectSet(PositionFix{Lat: newLat, Lon: newLon, NUCp: newNUC})
	}
}

// doGlobalCPR decodes a's matched odd/even CPR pair. Returns 0 on success,
// -1 for a nonfatal failure (crossed zones; surface needs a local
// reference this decoder doesn't have), -2 when the result fails the
// speed-plausibility gate and both fragments should be discarded.
func doGlobalCPR(a *Aircraft, msg *modes.Message, nowMs int64, lat, lon *float64, nuc *uint32) int {
	surface := msg.RawCPRType == modes.CprSurface

	odd, _ := a.CPROdd.Get()
	even, _ := a.CPREven.Get()
	*nuc = minUint32(even.NUCp, odd.NUCp)

	var err error
	if surface {
		*lat, *lon, err = cpr.DecodeGlobalSurface(even.Lat, even.Lon, odd.Lat, odd.Lon, msg.RawCPROdd)
	} else {
		*lat, *lon, err = cpr.DecodeGlobalAirborne(even.Lat, even.Lon, odd.Lat, odd.Lon, msg.RawCPROdd)
	}
	if err != nil {
		return -1
	}

	if msg.Source == modes.SourceMLAT {
		return 0
	}

	if pos, ok := a.Position.Get(); ok && pos.NUCp >= *nuc && !speedCheck(a, *lat, *lon, nowMs, surface) {
		return -2
	}

	return 0
}

// doLocalCPR decodes a single CPR fragment relative to a's last known
// position. Returns -1 if no usable reference exists, the decode fails,
// the result is outside the 50km sanity range, or it fails the speed
// gate.
func doLocalCPR(a *Aircraft, msg *modes.Message, nowMs int64, lat, lon *float64, nuc *uint32) int {
	surface := msg.RawCPRType == modes.CprSurface
	*nuc = msg.RawCPRNUCp

	if !a.Position.IsValidWithConstraints(nowMs, 50000, modes.SourceInvalid) {
		return -1
	}
	ref, _ := a.Position.Get()
	if ref.NUCp < *nuc {
		*nuc = ref.NUCp
	}

	rlat, rlon, err := cpr.DecodeLocal(ref.Lat, ref.Lon, msg.RawCPRLat, msg.RawCPRLon, msg.RawCPROdd, surface)
	if err != nil {
		return -1
	}
	*lat, *lon = rlat, rlon

	if greatcircle(ref.Lat, ref.Lon, *lat, *lon) > 50.0e3 {
		return -1
	}

	if pos, ok := a.Position.Get(); ok && pos.NUCp >= *nuc && !speedCheck(a, *lat, *lon, nowMs, surface) {
		return -1
	}

	return 0
}

// speedCheck reports whether it is plausible for a to have travelled from
// its last known position to (lat, lon) by now, given its last reported
// speed (or a conservative guess).
func speedCheck(a *Aircraft, lat, lon float64, nowMs int64, surface bool) bool {
	elapsed := a.Position.DataAge(nowMs)

	pos, ok := a.Position.Get()
	if !ok {
		return true
	}

	var speed uint32
	switch {
	case a.Speed.IsValid():
		speed, _ = a.Speed.Get()
	case a.SpeedIAS.IsValid():
		v, _ := a.SpeedIAS.Get()
		speed = v * 4 / 3
	case a.SpeedTAS.IsValid():
		v, _ := a.SpeedTAS.Get()
		speed = v * 4 / 3
	default:
		if surface {
			speed = 100
		} else {
			speed = 600
		}
	}

	speed = speed * 4 / 3
	if surface {
		speed = clampUint32(speed, 20, 150)
	} else {
		speed = maxUint32(speed, 200)
	}

	base := 500.0
	if surface {
		base = 100.0
	}
	rangeMeters := (float64(elapsed)+1000.0)/1000.0*(float64(speed)*1852.0/3600.0) + base

	distance := greatcircle(pos.Lat, pos.Lon, lat, lon)
	return distance <= rangeMeters
}

func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxUint32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
