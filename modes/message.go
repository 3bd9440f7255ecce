// Package modes implements Mode S message scoring and the full Mode-S /
// Extended Squitter decoder.
package modes

// MsgLen distinguishes the two Mode S frame lengths.
type MsgLen int

const (
	Short MsgLen = iota // 7 bytes, DF in {0,4,5,11}
	Long                // 14 bytes
)

// Bytes returns the byte length for the frame length tag.
func (l MsgLen) Bytes() int {
	if l == Long {
		return 14
	}
	return 7
}

// Bits returns the bit length for the frame length tag.
func (l MsgLen) Bits() int {
	return l.Bytes() * 8
}

// Message is a demodulated or decoded Mode S frame. Construction via the
// demodulator populates MsgLen/Msg/SignalLevel/Score/Timestamp; Decode
// fills in every field below that.
type Message struct {
	MsgLen      MsgLen
	Msg         [14]byte
	SignalLevel float64
	Score       int32
	Timestamp   uint64

	// Decoded fields, populated by Decode. Zero value means "not present"
	// unless guarded by the corresponding *Valid flag.
	DF       int
	CA       int
	ICAO     uint32
	AddrType AddrType
	Source   DataSource

	CRCOK      bool
	ErrorBit   int // Decode sets -1; the bit fixed by single-bit CRC correction is not recorded (see PhaseCorrected)
	PhaseCorrected bool

	AltitudeValid bool
	Altitude      int
	AltitudeUnit  string // "ft" always in this decoder; "m" is an error case

	SquawkValid bool
	Squawk      uint16

	FlightValid bool
	Flight      string

	CategoryValid bool
	Category      uint8

	METype int
	MESub  int

	RawCPRValid bool
	RawCPRLat   uint32
	RawCPRLon   uint32
	RawCPROdd   bool
	RawCPRNUCp  uint32
	RawCPRType  CprType

	HeadingValid bool
	Heading      float64

	SpeedValid bool
	Speed      uint32
	SpeedIASValid bool
	SpeedIAS      uint32
	SpeedTASValid bool
	SpeedTAS      uint32

	VertRateValid  bool
	VertRate       int
	VertRateSource AltitudeSource

	AltitudeGNSSValid bool
	AltitudeGNSS      int

	AirGroundValid bool
	AirGround      AirGround

	// DecodedCPR records the result of a successful tracker-side CPR
	// decode for this message, for diagnostics/fan-out display.
	DecodedCPRValid bool
	DecodedLat      float64
	DecodedLon      float64
	DecodedLocal    bool

	SpeedSource   SpeedSource
	HeadingSource HeadingSource

	// GNSSDelta is WGS84 ellipsoid altitude minus barometric altitude, in
	// feet, from an airborne velocity message's supplementary field.
	GNSSDeltaValid bool
	GNSSDelta      int

	CFValid bool
	CF      int

	// EmergencySquawk is the identity field carried in a metype 28/1
	// Aircraft Status message, distinct from a DF5/21 Flight Status
	// squawk.
	EmergencySquawkValid bool
	EmergencySquawk      uint16

	TSS      *TargetStateStatus
	OpStatus *OperationalStatus
}

// SpeedSource distinguishes how a reported speed was derived.
type SpeedSource int

const (
	SpeedGroundSpeed SpeedSource = iota
	SpeedIASSource
	SpeedTASSource
)

// HeadingSource distinguishes true-north from magnetic headings.
type HeadingSource int

const (
	HeadingTrue HeadingSource = iota
	HeadingMagnetic
)

// TargetStateStatus is a partial decode of an ES Target State and Status
// (metype 29, mesub 1) message: the autopilot/mode annunciations used for
// situational display, not full RTCA/DO-260A fidelity.
type TargetStateStatus struct {
	ModeValid       bool
	ModeAutopilot   bool
	ModeVNAV        bool
	ModeAltHold     bool
	ModeApproach    bool
	ACASOperational bool
	NACp            uint8
	NICBaro         bool
	SIL             uint8
}

// OperationalStatus is a partial decode of an ES Operational Status
// message (metype 31): version and NIC/NACp/SIL fields, used to judge
// position accuracy, with the per-version capability-class bits omitted.
type OperationalStatus struct {
	Version uint8
	NICSuppA bool
	NACp     uint8
	SIL      uint8
	NICBaro  bool
}

// CprType distinguishes airborne from surface position encodings.
type CprType int

const (
	CprAirborne CprType = iota
	CprSurface
)

// AltitudeSource distinguishes barometric from GNSS-derived altitude.
type AltitudeSource int

const (
	AltitudeBaro AltitudeSource = iota
	AltitudeGNSSSource
)

// AirGround is the coarse air/ground state inferred from CA or FS fields.
type AirGround int

const (
	AirGroundUnknown AirGround = iota
	AirGroundAirborne
	AirGroundGround
)

// DataSource is the tracker's total order over where a field's value came
// from; larger is more trusted.
type DataSource int

const (
	SourceInvalid DataSource = iota
	SourceMLAT
	SourceModeS
	SourceModeSChecked
	SourceTISB
	SourceADSB
)

// AddrType classifies how an ICAO-like address was obtained. Smaller
// values are more trusted, per the tracker's source-promotion rule.
type AddrType int

const (
	AddrADSBICAO AddrType = iota
	AddrADSBICAONT
	AddrADSRICAO
	AddrTISBICAO
	AddrADSBOther
	AddrADSROther
	AddrTISBTrackfile
	AddrTISBOther
	AddrUnknown
)
