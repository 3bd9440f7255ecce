// Package sdr feeds raw IQ sample bytes into the magnitude/iqbuffer
// pipeline. It generalizes the classic rtl_adsb-style subprocess ingest
// (exec.Command + StdoutPipe, read until EOF) from pre-decoded AVR hex
// lines to the pipeline's actual raw-sample input: interleaved signed
// 16-bit little-endian IQ, or unsigned 8-bit IQ pairs.
package sdr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"modes1090/iqbuffer"
	"modes1090/magnitude"
)

// SampleFormat selects how raw bytes are interpreted as IQ pairs.
type SampleFormat int

const (
	// FormatU8 is unsigned 8-bit (I,Q) byte pairs, the default rtl_sdr
	// output format and what the byte-indexed magnitude LUT expects.
	FormatU8 SampleFormat = iota
	// FormatS16LE is interleaved signed 16-bit little-endian (Im, Re)
	// samples.
	FormatS16LE
)

// ErrReadTimeout is returned when a buffer is not filled within the
// configured read timeout, matching the driver's SDR-read deadline.
var ErrReadTimeout = errors.New("sdr: read timeout")

// Source streams raw sample bytes. A subprocess (e.g. rtl_sdr) or a
// captured .iq file both implement this via their respective
// constructors below.
type Source struct {
	r      io.Reader
	closer func() error
	format SampleFormat

	// readDeadline bounds how long one FillBuffer call may take to fill
	// the buffer before the source reports ErrReadTimeout, letting the
	// caller exit non-zero for a supervisor restart. Zero means no bound.
	readDeadline time.Duration
}

// OpenSubprocess starts execPath (e.g. an rtl_sdr binary) and reads its
// stdout as raw sample bytes, mirroring a driver's process lifecycle but
// without line-oriented framing.
func OpenSubprocess(execPath string, args []string, format SampleFormat, readTimeout time.Duration) (*Source, error) {
	cmd := exec.Command(execPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("sdr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("sdr: %w", err)
	}
	return &Source{
		r:            bufio.NewReaderSize(stdout, 1<<20),
		closer:       func() error { cmd.Process.Kill(); return cmd.Wait() },
		format:       format,
		readDeadline: readTimeout,
	}, nil
}

// OpenFile reads raw sample bytes from an already-captured .iq file,
// used for offline replay and by this package's tests. No read timeout
// is set.
func OpenFile(r io.ReadCloser, format SampleFormat) *Source {
	return &Source{
		r:      bufio.NewReaderSize(r, 1<<20),
		closer: r.Close,
		format: format,
	}
}

// Close releases the underlying process or file.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// bytesPerSample is the raw byte width of one IQ pair in this format.
func (s *Source) bytesPerSample() int {
	if s.format == FormatS16LE {
		return 4
	}
	return 2
}

// FillBuffer reads sample bytes into buf until it is full (N fresh
// samples pushed past the trailing overlap) or the read deadline
// expires, in which case it returns ErrReadTimeout. This is the sole
// blocking point the hot loop may suspend at.
func (s *Source) FillBuffer(buf *iqbuffer.Buffer) error {
	type result struct {
		err error
	}
	done := make(chan result, 1)
	go func() {
		done <- result{err: s.fill(buf)}
	}()

	if s.readDeadline <= 0 {
		r := <-done
		return r.err
	}

	select {
	case r := <-done:
		return r.err
	case <-time.After(s.readDeadline):
		return ErrReadTimeout
	}
}

func (s *Source) fill(buf *iqbuffer.Buffer) error {
	bps := s.bytesPerSample()
	raw := make([]byte, bps)
	for buf.Length < iqbuffer.N {
		if _, err := io.ReadFull(s.r, raw); err != nil {
			return err
		}
		buf.Push(s.decodeSample(raw))
	}
	return nil
}

func (s *Source) decodeSample(raw []byte) uint16 {
	switch s.format {
	case FormatS16LE:
		im := int16(uint16(raw[0]) | uint16(raw[1])<<8)
		re := int16(uint16(raw[2]) | uint16(raw[3])<<8)
		return magnitude.FromI16(re, im)
	default:
		return magnitude.FromByte(raw[0], raw[1])
	}
}
