package modes

import (
	"errors"
	"math"

	"modes1090/crc"
	"modes1090/icaofilter"
)

// ErrAllZero is returned for a frame that is entirely zero bytes.
var ErrAllZero = errors.New("modes: all-zero message")

// ErrUnknownDF is returned for a downlink format this decoder has no CRC
// strategy for.
var ErrUnknownDF = errors.New("modes: unhandled downlink format")

// ErrFilterMiss is returned when a DF that relies on address/parity (no
// directly verifiable CRC) does not match a previously-confirmed address in
// the ICAO filter.
var ErrFilterMiss = errors.New("modes: address not recognized")

// ErrBadParity is returned for a DF11 all-call reply whose CRC, masked to
// exclude the II/CL interrogator bits, is nonzero.
var ErrBadParity = errors.New("modes: bad all-call parity")

// ErrBadExtSquitterCRC is returned for a DF17/18 extended squitter whose
// CRC syndrome is not exactly zero.
var ErrBadExtSquitterCRC = errors.New("modes: extended squitter CRC mismatch")

// aisCommBCharset mirrors aisCharset but for Comm-B BDS 2,0 decode: all 64
// codes map to their ASCII characters, where aisCharset maps the codes it
// treats as invalid to '?'.
const aisCommBCharset = "@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_ !\"#$%&'()*+,-./0123456789:;<=>?"

// msgBitsForDF returns the frame length in bits for a downlink format.
func msgBitsForDF(df int) int {
	if df&0x10 != 0 {
		return 112
	}
	return 56
}

// Decode parses the bulk fields of a demodulated Mode S frame, and
// classifies its CRC/address trust level against filter. filter is
// consulted for address/parity downlink formats and is updated with the
// address of every DF17/18 frame and of every DF11 frame whose interrogator
// code is zero (demod.Demodulate2400 also adds DF11/17/18 addresses to the
// filter when it accepts a frame).
// Decode's legacy parameter is variadic so existing callers that only
// pass the primary filter keep compiling; when present, it is consulted
// as a fallback on a primary filter miss (SPEC_FULL.md §10.6).
func Decode(msg []byte, filter *icaofilter.Filter, legacy ...*LegacyAddressCache) (*Message, error) {
	var lc *LegacyAddressCache
	if len(legacy) > 0 {
		lc = legacy[0]
	}

	allZero := true
	for _, b := range msg {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return nil, ErrAllZero
	}

	df := int(GetBits(msg, 1, 5))
	bits := msgBitsForDF(df)
	if bits/8 > len(msg) {
		return nil, ErrUnknownDF
	}
	checksum := crc.Checksum(msg[:bits/8], bits)

	m := &Message{
		DF:       df,
		ErrorBit: -1,
	}

	switch df {
	case 0, 4, 5, 16, 24, 25, 26, 27, 28, 29, 30, 31:
		if !filter.Test(checksum) && !(lc != nil && lc.Test(checksum)) {
			return nil, ErrFilterMiss
		}
		m.Source = SourceModeS
		m.ICAO = checksum
	case 11:
		if checksum&0x00ffff80 != 0 {
			return nil, ErrBadParity
		}
		m.Source = SourceModeSChecked
	case 17, 18:
		if checksum != 0 {
			return nil, ErrBadExtSquitterCRC
		}
		m.Source = SourceADSB
	case 20, 21:
		if !filter.Test(checksum) && !(lc != nil && lc.Test(checksum)) {
			return nil, ErrFilterMiss
		}
		m.Source = SourceModeS
		m.ICAO = checksum
	default:
		return nil, ErrUnknownDF
	}

	// AA (Address announced)
	if df == 11 || df == 17 || df == 18 {
		m.ICAO = GetBits(msg, 9, 32)
	}

	// AC (Altitude code)
	if df == 0 || df == 4 || df == 16 || df == 20 {
		ac := GetBits(msg, 20, 32)
		if ac != 0 {
			if alt, err := decodeAC13Field(ac); err == nil {
				m.AltitudeValid = true
				m.Altitude = alt
				m.AltitudeUnit = "ft"
			}
		}
	}

	// CA (Capability)
	if df == 11 || df == 17 {
		m.CA = int(GetBits(msg, 6, 8))
		switch m.CA {
		case 0, 6, 7:
			m.AirGroundValid = true
			m.AirGround = AirGroundUnknown
		case 4:
			m.AirGroundValid = true
			m.AirGround = AirGroundGround
		case 5:
			m.AirGroundValid = true
			m.AirGround = AirGroundAirborne
		}
	}

	// CF (Control field, DF18)
	if df == 18 {
		m.CFValid = true
		m.CF = int(GetBits(msg, 5, 8))
	}

	// DR/FS (Downlink request / Flight status)
	if df == 4 || df == 5 || df == 20 || df == 21 {
		fs := GetBits(msg, 6, 8)
		switch fs {
		case 0:
			m.AirGroundValid, m.AirGround = true, AirGroundUnknown
		case 1:
			m.AirGroundValid, m.AirGround = true, AirGroundGround
		case 2:
			m.AirGroundValid, m.AirGround = true, AirGroundUnknown
		case 3:
			m.AirGroundValid, m.AirGround = true, AirGroundGround
		case 4:
			m.AirGroundValid, m.AirGround = true, AirGroundUnknown
		case 5:
			m.AirGroundValid, m.AirGround = true, AirGroundUnknown
		}
	}

	// ID (Identity, DF5/21)
	if df == 5 || df == 21 {
		id := GetBits(msg, 20, 32)
		if id != 0 {
			m.SquawkValid = true
			gillham := decodeID13Field(id)
			m.Squawk = decodeSquawkFromGillham(gillham)
		}
	}

	// MB (Comm-B message, DF20/21)
	if df == 20 || df == 21 {
		decodeCommB(msg, m)
	}

	// ME (Extended squitter message, DF17/18)
	if df == 17 || df == 18 {
		decodeExtendedSquitter(msg[4:11], df, m)
	}

	// VS (Vertical status, DF0/16)
	if df == 0 || df == 16 {
		vs := GetBit(msg, 6)
		m.AirGroundValid = true
		if vs != 0 {
			m.AirGround = AirGroundGround
		} else {
			m.AirGround = AirGroundUnknown
		}
	}

	if df == 17 || df == 18 || (df == 11 && checksum&0x7f == 0) {
		// No CRC errors seen, and either this was an extended squitter or
		// a DF11 acquisition squitter with II = 0: the address is trusted.
		filter.Add(m.ICAO)
		if lc != nil {
			lc.Add(m.ICAO)
		}
	}

	return m, nil
}

// decodeSquawkFromGillham converts a hex-Gillham-coded identity field (the
// form decodeID13Field produces) directly to the four-digit octal squawk,
// reusing modeAToModeC's bit layout but without its altitude arithmetic:
// each Gillham digit maps straight to a decimal digit.
func decodeSquawkFromGillham(gillham uint32) uint16 {
	c1 := (gillham & 0x0010) != 0
	c2 := (gillham & 0x0020) != 0
	c4 := (gillham & 0x0040) != 0
	a1 := (gillham & 0x1000) != 0
	a2 := (gillham & 0x2000) != 0
	a4 := (gillham & 0x4000) != 0
	b1 := (gillham & 0x0100) != 0
	b2 := (gillham & 0x0200) != 0
	b4 := (gillham & 0x0400) != 0
	d1 := (gillham & 0x0001) != 0
	d2 := (gillham & 0x0002) != 0
	d4 := (gillham & 0x0004) != 0

	bit := func(b bool, v uint16) uint16 {
		if b {
			return v
		}
		return 0
	}

	a := bit(a4, 4) + bit(a2, 2) + bit(a1, 1)
	b := bit(b4, 4) + bit(b2, 2) + bit(b1, 1)
	c := bit(c4, 4) + bit(c2, 2) + bit(c1, 1)
	d := bit(d4, 4) + bit(d2, 2) + bit(d1, 1)

	return a*1000 + b*100 + c*10 + d
}

// decodeCommB inspects a DF20/21 Comm-B field for a BDS 2,0 Aircraft
// Identification register and, if present and plausible, fills Flight.
// Which register was actually requested is not otherwise known to a
// passive receiver, so every other BDS code is left undecoded.
func decodeCommB(msg []byte, m *Message) {
	if GetBits(msg, 33, 40) != 0x20 {
		return
	}

	var chars [8]byte
	idx := [8]uint32{
		GetBits(msg, 41, 46), GetBits(msg, 47, 52),
		GetBits(msg, 53, 58), GetBits(msg, 59, 64),
		GetBits(msg, 65, 70), GetBits(msg, 71, 76),
		GetBits(msg, 77, 82), GetBits(msg, 83, 88),
	}
	for i, v := range idx {
		if int(v) >= len(aisCommBCharset) {
			return
		}
		chars[i] = aisCommBCharset[v]
	}

	for _, c := range chars {
		alnum := (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == ' '
		if !alnum {
			return
		}
	}

	m.FlightValid = true
	m.Flight = string(chars[:])
}

// setIMF marks an address as non-ICAO and reclassifies its AddrType, for
// DF18 payloads whose IMF bit says the AA field holds a Mode-A/track-file
// pair rather than a 24-bit ICAO address.
func setIMF(addrType *AddrType) {
	switch *addrType {
	case AddrADSBICAO, AddrADSBICAONT:
		*addrType = AddrADSBOther
	case AddrTISBICAO:
		*addrType = AddrTISBTrackfile
	case AddrADSRICAO:
		*addrType = AddrADSROther
	}
}

// decodeExtendedSquitter dispatches a DF17/18 ME field by metype. me is
// the 7-byte ME field (message bytes 4..10 inclusive).
func decodeExtendedSquitter(me []byte, df int, m *Message) {
	metype := int(GetBits(me, 1, 5))
	m.METype = metype
	checkIMF := false

	if df == 18 {
		switch m.CF {
		case 0:
			m.AddrType = AddrADSBICAONT
		case 1:
			m.AddrType = AddrADSBOther
		case 2:
			m.Source = SourceTISB
			m.AddrType = AddrTISBICAO
			checkIMF = true
		case 3:
			// Coarse TIS-B airborne position/velocity: only the IMF bit
			// is inspected, per the grounding source's own scope.
			m.Source = SourceTISB
			m.AddrType = AddrTISBICAO
			if GetBit(me, 1) != 0 {
				setIMF(&m.AddrType)
			}
			return
		case 5:
			m.AddrType = AddrTISBOther
			m.Source = SourceTISB
		case 6:
			m.AddrType = AddrADSRICAO
			checkIMF = true
		default:
			m.AddrType = AddrUnknown
		}
	}

	switch {
	case metype >= 1 && metype <= 4:
		m.MESub = int(GetBits(me, 6, 8))
		if flight, ok := decodeCallsign(me); ok {
			m.FlightValid = true
			m.Flight = flight
		}
		m.CategoryValid = true
		m.Category = uint8((0x0E-metype)<<4 | m.MESub)

	case metype == 19:
		decodeVelocity(me, checkIMF, m)

	case metype >= 5 && metype <= 8:
		if checkIMF && GetBit(me, 21) != 0 {
			setIMF(&m.AddrType)
		}
		m.AirGroundValid = true
		m.AirGround = AirGroundGround

		m.RawCPRValid = true
		m.RawCPRLat = GetBits(me, 23, 39)
		m.RawCPRLon = GetBits(me, 40, 56)
		m.RawCPROdd = GetBit(me, 22) != 0
		m.RawCPRNUCp = uint32(14 - metype)
		m.RawCPRType = CprSurface

		movement := GetBits(me, 6, 12)
		if movement > 0 && movement < 125 {
			if knots, ok := decodeMovementField(movement); ok {
				m.SpeedValid = true
				m.Speed = knots
				m.SpeedSource = SpeedGroundSpeed
			}
		}

		if GetBit(me, 13) != 0 {
			m.HeadingValid = true
			m.Heading = float64(GetBits(me, 14, 20)*360) / 128
			m.HeadingSource = HeadingTrue
		}

	case metype == 0 || (metype >= 9 && metype <= 18) || (metype >= 20 && metype <= 22):
		decodeAirbornePosition(me, metype, checkIMF, m)

	case metype == 23:
		// ES test message: not decoded.

	case metype == 28:
		m.MESub = int(GetBits(me, 6, 8))
		if m.MESub == 1 {
			id13 := GetBits(me, 12, 24)
			if id13 != 0 {
				m.EmergencySquawkValid = true
				m.EmergencySquawk = decodeSquawkFromGillham(decodeID13Field(id13))
			}
			if checkIMF && GetBit(me, 56) != 0 {
				setIMF(&m.AddrType)
			}
		}

	case metype == 29:
		decodeTargetStateStatus(me, checkIMF, m)

	case metype == 31:
		decodeOperationalStatus(me, checkIMF, m)
	}
}

// decodeVelocity decodes metype 19 Airborne Velocity messages. For mesub
// 3/4 (airspeed/heading form) only the vertical rate and GNSS delta are
// decoded; their airspeed and heading are not (the grounding source itself
// has never implemented that branch).
func decodeVelocity(me []byte, checkIMF bool, m *Message) {
	m.MESub = int(GetBits(me, 6, 8))

	if checkIMF && GetBit(me, 9) != 0 {
		setIMF(&m.AddrType)
	}

	if m.MESub < 1 || m.MESub > 4 {
		return
	}

	if raw := GetBits(me, 38, 46); raw != 0 {
		scale := 64
		if GetBit(me, 37) != 0 {
			scale = -64
		}
		m.VertRateValid = true
		m.VertRate = int(raw-1) * scale
		if GetBit(me, 36) != 0 {
			m.VertRateSource = AltitudeGNSSSource
		} else {
			m.VertRateSource = AltitudeBaro
		}
	}

	switch m.MESub {
	case 1, 2:
		ewRaw := int(GetBits(me, 15, 24))
		nsRaw := int(GetBits(me, 26, 35))
		if ewRaw != 0 && nsRaw != 0 {
			scale := 1
			if m.MESub == 2 {
				scale = 4
			}
			ewSign := 1
			if GetBit(me, 14) != 0 {
				ewSign = -1
			}
			nsSign := 1
			if GetBit(me, 25) != 0 {
				nsSign = -1
			}
			ewVel := float64((ewRaw - 1) * ewSign * scale)
			nsVel := float64((nsRaw - 1) * nsSign * scale)

			speed := math.Sqrt(nsVel*nsVel + ewVel*ewVel + 0.5)
			m.SpeedValid = true
			m.Speed = uint32(speed)
			m.SpeedSource = SpeedGroundSpeed

			if speed != 0 {
				heading := int(math.Atan2(ewVel, nsVel)*180.0/math.Pi + 0.5)
				if heading < 0 {
					heading += 360
				}
				m.HeadingValid = true
				m.Heading = float64(heading)
				m.HeadingSource = HeadingTrue
			}
		}
	}

	if raw := GetBits(me, 50, 56); raw != 0 {
		scale := 25
		if GetBit(me, 49) != 0 {
			scale = -25
		}
		m.GNSSDeltaValid = true
		m.GNSSDelta = int(raw-1) * scale
	}
}

// decodeAirbornePosition decodes metype 0/9-18/20-22 airborne position and
// altitude, applying the same known-bad-report filter the grounding source
// applies to metype 15 (all-zero altitude/longitude with a masked
// latitude, seen from specific aircraft types).
func decodeAirbornePosition(me []byte, metype int, checkIMF bool, m *Message) {
	if checkIMF && GetBit(me, 8) != 0 {
		setIMF(&m.AddrType)
	}

	ac12 := GetBits(me, 9, 20)

	if metype != 0 {
		cprLat := GetBits(me, 23, 39)
		cprLon := GetBits(me, 40, 56)

		badReport := ac12 == 0 && cprLon == 0 && (cprLat&0x0fff) == 0 && metype == 15
		if !badReport {
			m.RawCPRValid = true
			m.RawCPRLat = cprLat
			m.RawCPRLon = cprLon
			m.RawCPROdd = GetBit(me, 22) != 0

			switch {
			case metype == 18 || metype == 22:
				m.RawCPRNUCp = 0
			case metype < 18:
				m.RawCPRNUCp = uint32(18 - metype)
			default:
				m.RawCPRNUCp = uint32(29 - metype)
			}
			m.RawCPRType = CprAirborne
		}
	}

	if ac12 != 0 {
		if altitude, err := decodeAC12Field(ac12); err == nil {
			m.AltitudeValid = true
			m.Altitude = altitude
			m.AltitudeUnit = "ft"
			if metype >= 20 && metype <= 22 {
				m.AltitudeGNSSValid = true
				m.AltitudeGNSS = altitude
			}
		}
	}
}

func decodeTargetStateStatus(me []byte, checkIMF bool, m *Message) {
	m.MESub = int(GetBits(me, 6, 7))

	if checkIMF && GetBit(me, 51) != 0 {
		setIMF(&m.AddrType)
	}

	if m.MESub != 1 {
		// V1 target state and status requires RTCA/DO-260A to decode and
		// is left unimplemented here, matching metype 29 mesub 0.
		return
	}

	tss := &TargetStateStatus{
		NACp:    uint8(GetBits(me, 40, 43)),
		NICBaro: GetBit(me, 44) != 0,
		SIL:     uint8(GetBits(me, 45, 46)),
	}
	tss.ModeValid = GetBit(me, 47) != 0
	tss.ModeAutopilot = GetBit(me, 48) != 0
	tss.ModeVNAV = GetBit(me, 49) != 0
	tss.ModeAltHold = GetBit(me, 50) != 0
	tss.ModeApproach = GetBit(me, 52) != 0
	tss.ACASOperational = GetBit(me, 53) != 0

	m.TSS = tss
}

// decodeOperationalStatus decodes metype 31 mesub 0/1 Operational Status
// messages: version and NIC/NACp/SIL, omitting the per-capability-class
// bits (ACAS/CDTI/ARV/TS/UAT fan-out) that only matter to a full ACAS
// implementation.
func decodeOperationalStatus(me []byte, checkIMF bool, m *Message) {
	mesub := int(GetBits(me, 6, 8))
	m.MESub = mesub

	if checkIMF && GetBit(me, 56) != 0 {
		setIMF(&m.AddrType)
	}

	if mesub != 0 && mesub != 1 {
		return
	}

	op := &OperationalStatus{
		Version: uint8(GetBits(me, 41, 43)),
	}

	switch op.Version {
	case 0:
		// No additional fields defined.
	case 1:
		op.NICSuppA = GetBit(me, 44) != 0
		op.NACp = uint8(GetBits(me, 45, 48))
		op.SIL = uint8(GetBits(me, 51, 52))
		if mesub == 0 {
			op.NICBaro = GetBit(me, 53) != 0
		}
	default:
		op.NICSuppA = GetBit(me, 44) != 0
		op.NACp = uint8(GetBits(me, 45, 48))
		op.SIL = uint8(GetBits(me, 51, 52))
		if mesub == 0 {
			op.NICBaro = GetBit(me, 53) != 0
		}
	}

	m.OpStatus = op
}
