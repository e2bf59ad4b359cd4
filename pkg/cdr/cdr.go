// Package cdr reads and writes OMG CDR encoded payloads as stored in ROS 2 bags.
//
// A payload starts with a 4-byte encapsulation header (2-byte representation
// identifier, 2-byte options). Primitive alignment is computed from the first
// byte after that header.
package cdr

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the length of the encapsulation header.
const HeaderSize = 4

// Encapsulation identifies the representation of a payload.
type Encapsulation uint16

const (
	EncapsulationCDRBE  Encapsulation = 0x0000
	EncapsulationCDRLE  Encapsulation = 0x0001
	EncapsulationCDR2BE Encapsulation = 0x0006
	EncapsulationCDR2LE Encapsulation = 0x0007
)

var (
	// ErrShortBuffer is returned when a read runs past the end of the payload.
	ErrShortBuffer = errors.New("cdr: short buffer")

	// ErrUnsupportedEncapsulation is returned for parameter-list or unknown representations.
	ErrUnsupportedEncapsulation = errors.New("cdr: unsupported encapsulation")

	// ErrInvalidString is returned when a string is not NUL terminated.
	ErrInvalidString = errors.New("cdr: invalid string")
)

// String returns the name used by the DDS specification.
func (e Encapsulation) String() string {
	switch e {
	case EncapsulationCDRBE:
		return "CDR_BE"
	case EncapsulationCDRLE:
		return "CDR_LE"
	case EncapsulationCDR2BE:
		return "CDR2_BE"
	case EncapsulationCDR2LE:
		return "CDR2_LE"
	default:
		return fmt.Sprintf("0x%04x", uint16(e))
	}
}

// byteOrder returns the byte order and the largest primitive alignment of e.
func (e Encapsulation) byteOrder() (binary.ByteOrder, int, error) {
	switch e {
	case EncapsulationCDRBE:
		return binary.BigEndian, 8, nil
	case EncapsulationCDRLE:
		return binary.LittleEndian, 8, nil
	case EncapsulationCDR2BE:
		return binary.BigEndian, 4, nil
	case EncapsulationCDR2LE:
		return binary.LittleEndian, 4, nil
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedEncapsulation, e)
	}
}
