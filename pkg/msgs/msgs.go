// Package msgs decodes the ROS 2 image message types from their CDR payloads.
package msgs

import (
	"errors"
	"fmt"
	"time"

	"github.com/user/bag2mp4/pkg/cdr"
)

// Type names as recorded in the bag topic catalog.
const (
	TypeImage           = "sensor_msgs/msg/Image"
	TypeCompressedImage = "sensor_msgs/msg/CompressedImage"
)

// ErrUnsupportedType is returned when a type name is not an image message.
var ErrUnsupportedType = errors.New("msgs: unsupported message type")

// Time mirrors builtin_interfaces/msg/Time.
type Time struct {
	Sec     int32
	Nanosec uint32
}

// AsTime converts t to a time.Time.
func (t Time) AsTime() time.Time {
	return time.Unix(int64(t.Sec), int64(t.Nanosec))
}

// Header mirrors std_msgs/msg/Header.
type Header struct {
	Stamp   Time
	FrameID string
}

// Image mirrors sensor_msgs/msg/Image.
type Image struct {
	Header      Header
	Height      uint32
	Width       uint32
	Encoding    string
	IsBigEndian uint8
	Step        uint32
	Data        []byte
}

// CompressedImage mirrors sensor_msgs/msg/CompressedImage.
type CompressedImage struct {
	Header Header
	Format string
	Data   []byte
}

// IsImageType reports whether typeName can be decoded into a frame.
func IsImageType(typeName string) bool {
	switch normalizeType(typeName) {
	case TypeImage, TypeCompressedImage:
		return true
	}
	return false
}

// normalizeType accepts the ROS 1 style "sensor_msgs/Image" spelling.
func normalizeType(typeName string) string {
	switch typeName {
	case "sensor_msgs/Image":
		return TypeImage
	case "sensor_msgs/CompressedImage":
		return TypeCompressedImage
	}
	return typeName
}

func readHeader(r *cdr.Reader) Header {
	var h Header
	h.Stamp.Sec = r.Int32()
	h.Stamp.Nanosec = r.Uint32()
	h.FrameID = r.String()
	return h
}

func writeHeader(w *cdr.Writer, h Header) {
	w.WriteInt32(h.Stamp.Sec)
	w.WriteUint32(h.Stamp.Nanosec)
	w.WriteString(h.FrameID)
}

// UnmarshalImage decodes a sensor_msgs/msg/Image payload.
// Data aliases payload.
func UnmarshalImage(payload []byte) (*Image, error) {
	r, err := cdr.NewReader(payload)
	if err != nil {
		return nil, err
	}

	msg := &Image{}
	msg.Header = readHeader(r)
	msg.Height = r.Uint32()
	msg.Width = r.Uint32()
	msg.Encoding = r.String()
	msg.IsBigEndian = r.Uint8()
	msg.Step = r.Uint32()
	msg.Data = r.Bytes()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", TypeImage, err)
	}
	return msg, nil
}

// MarshalImage encodes msg as a little-endian CDR payload.
func MarshalImage(msg *Image) []byte {
	w, _ := cdr.NewWriter(cdr.EncapsulationCDRLE)
	writeHeader(w, msg.Header)
	w.WriteUint32(msg.Height)
	w.WriteUint32(msg.Width)
	w.WriteString(msg.Encoding)
	w.WriteUint8(msg.IsBigEndian)
	w.WriteUint32(msg.Step)
	w.WriteBytes(msg.Data)
	return w.Bytes()
}

// UnmarshalCompressedImage decodes a sensor_msgs/msg/CompressedImage payload.
func UnmarshalCompressedImage(payload []byte) (*CompressedImage, error) {
	r, err := cdr.NewReader(payload)
	if err != nil {
		return nil, err
	}

	msg := &CompressedImage{}
	msg.Header = readHeader(r)
	msg.Format = r.String()
	msg.Data = r.Bytes()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", TypeCompressedImage, err)
	}
	return msg, nil
}

// MarshalCompressedImage encodes msg as a little-endian CDR payload.
func MarshalCompressedImage(msg *CompressedImage) []byte {
	w, _ := cdr.NewWriter(cdr.EncapsulationCDRLE)
	writeHeader(w, msg.Header)
	w.WriteString(msg.Format)
	w.WriteBytes(msg.Data)
	return w.Bytes()
}

// Decoded is either an *Image or a *CompressedImage.
type Decoded interface {
	Stamp() time.Time
}

// Stamp returns the header timestamp.
func (m *Image) Stamp() time.Time { return m.Header.Stamp.AsTime() }

// Stamp returns the header timestamp.
func (m *CompressedImage) Stamp() time.Time { return m.Header.Stamp.AsTime() }

// Unmarshal decodes payload according to typeName.
func Unmarshal(typeName string, payload []byte) (Decoded, error) {
	switch normalizeType(typeName) {
	case TypeImage:
		return UnmarshalImage(payload)
	case TypeCompressedImage:
		return UnmarshalCompressedImage(payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typeName)
	}
}
