package cdr

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader decodes primitives from a CDR payload.
//
// Errors are sticky: after the first failure every read returns a zero value
// and Err reports the failure.
type Reader struct {
	buf      []byte
	off      int
	maxAlign int
	order    binary.ByteOrder
	encap    Encapsulation
	err      error
}

// NewReader parses the encapsulation header of data and returns a Reader
// positioned at the first payload byte.
func NewReader(data []byte) (*Reader, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d byte payload has no encapsulation header", ErrShortBuffer, len(data))
	}
	encap := Encapsulation(binary.BigEndian.Uint16(data[0:2]))
	order, maxAlign, err := encap.byteOrder()
	if err != nil {
		return nil, err
	}
	return &Reader{
		buf:      data,
		off:      HeaderSize,
		maxAlign: maxAlign,
		order:    order,
		encap:    encap,
	}, nil
}

// Encapsulation returns the representation declared by the payload header.
func (r *Reader) Encapsulation() Encapsulation {
	return r.encap
}

// Err returns the first error encountered.
func (r *Reader) Err() error {
	return r.err
}

// Offset returns the current position relative to the start of the payload.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) align(n int) {
	if n > r.maxAlign {
		n = r.maxAlign
	}
	if pad := (r.off - HeaderSize) % n; pad != 0 {
		r.off += n - pad
	}
}

// next aligns to size and returns the next size bytes.
func (r *Reader) next(size int) []byte {
	if r.err != nil {
		return nil
	}
	r.align(size)
	return r.take(size)
}

// take returns the next n bytes without alignment. Octet sequences are
// 1-aligned whatever their length.
func (r *Reader) take(size int) []byte {
	if r.err != nil {
		return nil
	}
	if size > len(r.buf)-r.off {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, size, r.off, len(r.buf)-r.off)
		r.off = len(r.buf)
		return nil
	}
	b := r.buf[r.off : r.off+size]
	r.off += size
	return b
}

// Uint8 reads an octet.
func (r *Reader) Uint8() uint8 {
	b := r.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Int8 reads a signed octet.
func (r *Reader) Int8() int8 {
	return int8(r.Uint8())
}

// Bool reads a boolean octet.
func (r *Reader) Bool() bool {
	return r.Uint8() != 0
}

// Uint16 reads an unsigned short.
func (r *Reader) Uint16() uint16 {
	b := r.next(2)
	if b == nil {
		return 0
	}
	return r.order.Uint16(b)
}

// Int16 reads a short.
func (r *Reader) Int16() int16 {
	return int16(r.Uint16())
}

// Uint32 reads an unsigned long.
func (r *Reader) Uint32() uint32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return r.order.Uint32(b)
}

// Int32 reads a long.
func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}

// Uint64 reads an unsigned long long.
func (r *Reader) Uint64() uint64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return r.order.Uint64(b)
}

// Int64 reads a long long.
func (r *Reader) Int64() int64 {
	return int64(r.Uint64())
}

// Float32 reads a float.
func (r *Reader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

// Float64 reads a double.
func (r *Reader) Float64() float64 {
	return math.Float64frombits(r.Uint64())
}

// SequenceLength reads the element count that prefixes a sequence.
// The count is checked against the unread bytes assuming elemSize bytes per element.
func (r *Reader) SequenceLength(elemSize int) int {
	n := r.Uint32()
	if r.err != nil {
		return 0
	}
	if elemSize > 0 && uint64(n)*uint64(elemSize) > uint64(r.Remaining()) {
		r.err = fmt.Errorf("%w: sequence of %d elements at offset %d exceeds payload", ErrShortBuffer, n, r.off)
		r.off = len(r.buf)
		return 0
	}
	return int(n)
}

// String reads a string. The encoded length includes the terminating NUL.
func (r *Reader) String() string {
	n := r.SequenceLength(1)
	if r.err != nil || n == 0 {
		return ""
	}
	b := r.take(n)
	if b == nil {
		return ""
	}
	if b[n-1] != 0 {
		r.err = fmt.Errorf("%w: missing NUL terminator at offset %d", ErrInvalidString, r.off-1)
		return ""
	}
	return string(b[:n-1])
}

// Bytes reads a sequence<octet>. The returned slice aliases the payload.
func (r *Reader) Bytes() []byte {
	n := r.SequenceLength(1)
	if r.err != nil {
		return nil
	}
	if n == 0 {
		return []byte{}
	}
	return r.take(n)
}
