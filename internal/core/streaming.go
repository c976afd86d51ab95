package core

// streaming.go wraps snapshot readers so the CSV parser sees clean UTF-8:
// a leading BOM is dropped, invalid bytes become '?', and the bytes read are
// counted for the snapshot size metric.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM returns a reader over r without a leading UTF-8 BOM.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// UTF8Sanitizer replaces invalid UTF-8 bytes with '?' as data streams through.
// A multi-byte rune split across reads is held back until the next read.
type UTF8Sanitizer struct {
	r       io.Reader
	pending []byte
}

// NewUTF8Sanitizer creates a sanitizing reader over r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	off := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[off:])
	n += off
	if n == 0 {
		return 0, err
	}

	atEOF := err == io.EOF
	buf := p[:n]
	out := 0
	for in := 0; in < len(buf); {
		if buf[in] < utf8.RuneSelf {
			buf[out] = buf[in]
			out++
			in++
			continue
		}
		if !atEOF && !utf8.FullRune(buf[in:]) {
			s.pending = append(s.pending, buf[in:]...)
			break
		}
		r, size := utf8.DecodeRune(buf[in:])
		if r == utf8.RuneError && size == 1 {
			buf[out] = '?'
			out++
			in++
			continue
		}
		copy(buf[out:], buf[in:in+size])
		out += size
		in += size
	}

	if out == 0 && err == nil {
		// Only a partial rune arrived; read again rather than return 0, nil.
		return s.Read(p)
	}
	return out, err
}

// CountingReader tracks the bytes read through it.
type CountingReader struct {
	r         io.Reader
	BytesRead int64
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.BytesRead += int64(n)
	return n, err
}

// WrapForStreaming applies BOM skipping, then UTF-8 sanitizing, then counting.
func WrapForStreaming(r io.Reader) *CountingReader {
	return &CountingReader{r: NewUTF8Sanitizer(SkipBOM(r))}
}
