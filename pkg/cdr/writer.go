package cdr

import (
	"encoding/binary"
	"math"
)

// Writer encodes primitives into a CDR payload.
type Writer struct {
	buf      []byte
	order    binary.ByteOrder
	maxAlign int
}

// NewWriter returns a Writer that has already written the encapsulation header.
func NewWriter(encap Encapsulation) (*Writer, error) {
	order, maxAlign, err := encap.byteOrder()
	if err != nil {
		return nil, err
	}
	w := &Writer{
		buf:      make([]byte, HeaderSize, 256),
		order:    order,
		maxAlign: maxAlign,
	}
	binary.BigEndian.PutUint16(w.buf[0:2], uint16(encap))
	return w, nil
}

// Bytes returns the encoded payload, header included.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) align(n int) {
	if n > w.maxAlign {
		n = w.maxAlign
	}
	for (len(w.buf)-HeaderSize)%n != 0 {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) grow(n int) []byte {
	w.align(n)
	start := len(w.buf)
	w.buf = append(w.buf, make([]byte, n)...)
	return w.buf[start:]
}

// WriteUint8 writes an octet.
func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteBool writes a boolean octet.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
		return
	}
	w.WriteUint8(0)
}

// WriteUint16 writes an unsigned short.
func (w *Writer) WriteUint16(v uint16) {
	w.order.PutUint16(w.grow(2), v)
}

// WriteUint32 writes an unsigned long.
func (w *Writer) WriteUint32(v uint32) {
	w.order.PutUint32(w.grow(4), v)
}

// WriteInt32 writes a long.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteUint64 writes an unsigned long long.
func (w *Writer) WriteUint64(v uint64) {
	w.order.PutUint64(w.grow(8), v)
}

// WriteFloat64 writes a double.
func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteString writes a NUL terminated string with its length prefix.
func (w *Writer) WriteString(s string) {
	w.WriteUint32(uint32(len(s) + 1))
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// WriteBytes writes a sequence<octet>.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteUint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}
