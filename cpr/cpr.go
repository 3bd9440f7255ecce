// Package cpr implements Compact Position Reporting decoders: global
// (even/odd pair) and local (reference-relative) airborne and surface
// position decoding.
package cpr

import (
	"errors"
	"math"
)

// ErrCrossedZone indicates the even/odd fragments disagree on which
// longitude zone they are in (NL mismatch); callers should retry once a
// fresher pair arrives rather than treat this as bad data.
var ErrCrossedZone = errors.New("cpr: even/odd NL zone mismatch")

// ErrOutOfRange indicates a decoded latitude fell outside [-90, 90],
// which can happen transiently with corrupted input.
var ErrOutOfRange = errors.New("cpr: latitude out of range")

// ErrNoLocalReference indicates a local decode was attempted without
// (or too far from) a usable reference position.
var ErrNoLocalReference = errors.New("cpr: no usable local reference")

// ErrUnimplemented marks a path the grounding source itself leaves
// unimplemented (surface global CPR's local-reference lookup).
var ErrUnimplemented = errors.New("cpr: surface global decode requires a local reference lookup not implemented here")

const scale = 131072.0 // 2^17

// posMod is the always-non-negative remainder of a mod b.
func posMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r < 0 {
		r += b
	}
	return r
}

// NL returns the number of longitude zones for latitude lat degrees, per
// the 59-entry ICAO 1090 MOPS table. NL(±90) == 1, NL(0) == 59.
func NL(lat float64) int {
	lat = math.Abs(lat)
	switch {
	case lat < 10.47047130:
		return 59
	case lat < 14.82817437:
		return 58
	case lat < 18.18626357:
		return 57
	case lat < 21.02939493:
		return 56
	case lat < 23.54504487:
		return 55
	case lat < 25.82924707:
		return 54
	case lat < 27.93898710:
		return 53
	case lat < 29.91135686:
		return 52
	case lat < 31.77209708:
		return 51
	case lat < 33.53993436:
		return 50
	case lat < 35.22899598:
		return 49
	case lat < 36.85025108:
		return 48
	case lat < 38.41241892:
		return 47
	case lat < 39.92256684:
		return 46
	case lat < 41.38651832:
		return 45
	case lat < 42.80914012:
		return 44
	case lat < 44.19454951:
		return 43
	case lat < 45.54626723:
		return 42
	case lat < 46.86733252:
		return 41
	case lat < 48.16039128:
		return 40
	case lat < 49.42776439:
		return 39
	case lat < 50.67150166:
		return 38
	case lat < 51.89342469:
		return 37
	case lat < 53.09516153:
		return 36
	case lat < 54.27817472:
		return 35
	case lat < 55.44378444:
		return 34
	case lat < 56.59318756:
		return 33
	case lat < 57.72747354:
		return 32
	case lat < 58.84763776:
		return 31
	case lat < 59.95459277:
		return 30
	case lat < 61.04917774:
		return 29
	case lat < 62.13216659:
		return 28
	case lat < 63.20427479:
		return 27
	case lat < 64.26616523:
		return 26
	case lat < 65.31845310:
		return 25
	case lat < 66.36171008:
		return 24
	case lat < 67.39646774:
		return 23
	case lat < 68.42322022:
		return 22
	case lat < 69.44242631:
		return 21
	case lat < 70.45451075:
		return 20
	case lat < 71.45986473:
		return 19
	case lat < 72.45884545:
		return 18
	case lat < 73.45177442:
		return 17
	case lat < 74.43893416:
		return 16
	case lat < 75.42056257:
		return 15
	case lat < 76.39684391:
		return 14
	case lat < 77.36789461:
		return 13
	case lat < 78.33374083:
		return 12
	case lat < 79.29428225:
		return 11
	case lat < 80.24923213:
		return 10
	case lat < 81.19801349:
		return 9
	case lat < 82.13956981:
		return 8
	case lat < 83.07199445:
		return 7
	case lat < 83.99173563:
		return 6
	case lat < 84.89166191:
		return 5
	case lat < 85.75541621:
		return 4
	case lat < 86.53536998:
		return 3
	case lat < 87.00000000:
		return 2
	default:
		return 1
	}
}

// n returns NL(lat) adjusted for odd fragments, floored at 1.
func n(lat float64, isOdd bool) int {
	nl := NL(lat)
	if isOdd {
		nl--
	}
	if nl < 1 {
		return 1
	}
	return nl
}

// dlon returns the longitude zone width in degrees for lat/isOdd.
func dlon(lat float64, isOdd bool) float64 {
	return 360.0 / float64(n(lat, isOdd))
}

// DecodeGlobalAirborne decodes a matched even/odd airborne CPR pair.
// evenLat/evenLon/oddLat/oddLon are raw 17-bit fragments; fflag selects
// which fragment's reference to use for longitude (false = even, true =
// odd).
func DecodeGlobalAirborne(evenLat, evenLon, oddLat, oddLon uint32, fflag bool) (lat, lon float64, err error) {
	return decodeGlobal(evenLat, evenLon, oddLat, oddLon, fflag, 360.0/60.0, 360.0/59.0)
}

// DecodeGlobalSurface decodes a matched even/odd surface CPR pair. The
// reference location needed to disambiguate the surface's four possible
// quadrants is not implemented: the grounding source itself leaves this
// unimplemented (a local aircraft or receiver reference would be
// required), so this always returns ErrUnimplemented.
func DecodeGlobalSurface(evenLat, evenLon, oddLat, oddLon uint32, fflag bool) (lat, lon float64, err error) {
	return 0, 0, ErrUnimplemented
}

func decodeGlobal(evenLat, evenLon, oddLat, oddLon uint32, fflag bool, dlatEven, dlatOdd float64) (float64, float64, error) {
	j := math.Floor((59*float64(evenLat) - 60*float64(oddLat))/scale + 0.5)

	rlatEven := dlatEven * (posMod(j, 60) + float64(evenLat)/scale)
	rlatOdd := dlatOdd * (posMod(j, 59) + float64(oddLat)/scale)

	if rlatEven >= 270 {
		rlatEven -= 360
	}
	if rlatOdd >= 270 {
		rlatOdd -= 360
	}

	if rlatEven < -90 || rlatEven > 90 || rlatOdd < -90 || rlatOdd > 90 {
		return 0, 0, ErrOutOfRange
	}

	if NL(rlatEven) != NL(rlatOdd) {
		return 0, 0, ErrCrossedZone
	}

	rlat := rlatEven
	lonUsed := evenLon
	isOdd := false
	if fflag {
		rlat = rlatOdd
		lonUsed = oddLon
		isOdd = true
	}

	ni := n(rlat, isOdd)
	m := math.Floor((float64(evenLon)*float64(NL(rlat)-1)-float64(oddLon)*float64(NL(rlat)))/scale + 0.5)

	rlon := dlon(rlat, isOdd) * (posMod(m, float64(ni)) + float64(lonUsed)/scale)
	rlon = normalizeLon(rlon)

	return rlat, rlon, nil
}

func normalizeLon(lon float64) float64 {
	if lon > 180 {
		lon -= 360
	}
	return lon
}

// DecodeLocal decodes a single CPR fragment relative to a known nearby
// reference position. surface selects the 90-degree-span surface variant.
func DecodeLocal(refLat, refLon float64, cprLat, cprLon uint32, isOdd, surface bool) (lat, lon float64, err error) {
	dlat := 360.0 / 60.0
	if isOdd {
		dlat = 360.0 / 59.0
	}
	if surface {
		dlat /= 4.0
	}

	fracLat := float64(cprLat) / scale
	j := math.Floor(refLat/dlat) + math.Floor(0.5+posMod(refLat, dlat)/dlat-fracLat)
	rlat := dlat * (j + fracLat)

	if math.Abs(rlat-refLat) > dlat/2 {
		return 0, 0, ErrNoLocalReference
	}

	dlonVal := dlon(rlat, isOdd)
	if surface {
		dlonVal /= 4.0
	}
	fracLon := float64(cprLon) / scale
	k := math.Floor(refLon/dlonVal) + math.Floor(0.5+posMod(refLon, dlonVal)/dlonVal-fracLon)
	rlon := dlonVal * (k + fracLon)

	return rlat, rlon, nil
}
