package sdr

import (
	"bytes"
	"io"
	"testing"
	"time"

	"modes1090/iqbuffer"
)

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

func TestFillBufferDecodesU8Samples(t *testing.T) {
	raw := bytes.Repeat([]byte{200, 200}, iqbuffer.N)
	s := OpenFile(nopCloser{bytes.NewReader(raw)}, FormatU8)

	var buf iqbuffer.Buffer
	if err := s.FillBuffer(&buf); err != nil {
		t.Fatalf("FillBuffer: %v", err)
	}
	if buf.Length != iqbuffer.N {
		t.Fatalf("expected %d samples, got %d", iqbuffer.N, buf.Length)
	}
	if buf.Data[iqbuffer.TrailingSamples] == 0 {
		t.Fatalf("expected a nonzero magnitude for a strong IQ pair")
	}
}

func TestFillBufferDecodesS16Samples(t *testing.T) {
	pair := []byte{0x00, 0x40, 0x00, 0x40} // Im=0x4000, Re=0x4000 little-endian
	raw := bytes.Repeat(pair, iqbuffer.N)
	s := OpenFile(nopCloser{bytes.NewReader(raw)}, FormatS16LE)

	var buf iqbuffer.Buffer
	if err := s.FillBuffer(&buf); err != nil {
		t.Fatalf("FillBuffer: %v", err)
	}
	if buf.Length != iqbuffer.N {
		t.Fatalf("expected %d samples, got %d", iqbuffer.N, buf.Length)
	}
}

func TestFillBufferReturnsErrorOnShortRead(t *testing.T) {
	raw := make([]byte, 10) // far fewer bytes than one full buffer needs
	s := OpenFile(nopCloser{bytes.NewReader(raw)}, FormatU8)

	var buf iqbuffer.Buffer
	if err := s.FillBuffer(&buf); err == nil {
		t.Fatalf("expected an error when the source runs out of bytes")
	}
}

func TestFillBufferRespectsReadTimeout(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	s := OpenFile(nopCloser{pr}, FormatU8)
	s.readDeadline = 10 * time.Millisecond

	var buf iqbuffer.Buffer
	if err := s.FillBuffer(&buf); err != ErrReadTimeout {
		t.Fatalf("expected ErrReadTimeout, got %v", err)
	}
}
