package msgs

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/user/bag2mp4/pkg/cdr"
)

func TestImage_RoundTrip(t *testing.T) {
	want := &Image{
		Header: Header{
			Stamp:   Time{Sec: 1700000000, Nanosec: 250000000},
			FrameID: "cam0_optical",
		},
		Height:   2,
		Width:    3,
		Encoding: "bgr8",
		Step:     9,
		Data:     make([]byte, 18),
	}

	got, err := UnmarshalImage(MarshalImage(want))
	if err != nil {
		t.Fatalf("UnmarshalImage failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("image mismatch (-want +got):\n%s", diff)
	}
	if got.Stamp().UnixNano() != 1700000000250000000 {
		t.Errorf("unexpected stamp %v", got.Stamp())
	}
}

func TestUnmarshalImage_BigEndianPayload(t *testing.T) {
	w, _ := cdr.NewWriter(cdr.EncapsulationCDRBE)
	w.WriteInt32(1)
	w.WriteUint32(2)
	w.WriteString("f")
	w.WriteUint32(1)
	w.WriteUint32(1)
	w.WriteString("mono8")
	w.WriteUint8(0)
	w.WriteUint32(1)
	w.WriteBytes([]byte{200})

	got, err := UnmarshalImage(w.Bytes())
	if err != nil {
		t.Fatalf("UnmarshalImage failed: %v", err)
	}
	if got.Encoding != "mono8" || got.Width != 1 || got.Data[0] != 200 {
		t.Errorf("unexpected message: %+v", got)
	}
}

func TestUnmarshalImage_HandBuiltPayload(t *testing.T) {
	payload := []byte{
		0x00, 0x01, 0x00, 0x00, // CDR_LE
		0x01, 0x00, 0x00, 0x00, // stamp.sec
		0x02, 0x00, 0x00, 0x00, // stamp.nanosec
		0x15, 0x00, 0x00, 0x00, // frame_id length 21
	}
	payload = append(payload, "camera_optical_frame\x00"...)
	payload = append(payload,
		0x00, 0x00, 0x00,       // padding to 4
		0x02, 0x00, 0x00, 0x00, // height
		0x01, 0x00, 0x00, 0x00, // width
		0x06, 0x00, 0x00, 0x00, // encoding length 6
	)
	payload = append(payload, "mono8\x00"...)
	payload = append(payload,
		0x00,                   // is_bigendian
		0x00,                   // padding to 4
		0x01, 0x00, 0x00, 0x00, // step
		0x02, 0x00, 0x00, 0x00, // data length
		10, 20,
	)

	got, err := UnmarshalImage(payload)
	if err != nil {
		t.Fatalf("UnmarshalImage failed: %v", err)
	}
	want := &Image{
		Header:   Header{Stamp: Time{Sec: 1, Nanosec: 2}, FrameID: "camera_optical_frame"},
		Height:   2,
		Width:    1,
		Encoding: "mono8",
		Step:     1,
		Data:     []byte{10, 20},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("image mismatch (-want +got):\n%s", diff)
	}
}

func TestImage_FrameIDLengths(t *testing.T) {
	for _, frameID := range []string{"", "a", "ab", "abc", "cam", "camera", "camera_link", "camera_optical_frame"} {
		t.Run(frameID, func(t *testing.T) {
			want := &Image{Header: Header{FrameID: frameID}, Height: 1, Width: 1, Encoding: "mono8", Step: 1, Data: []byte{7}}
			got, err := UnmarshalImage(MarshalImage(want))
			if err != nil {
				t.Fatalf("UnmarshalImage failed: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("image mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmarshalImage_Truncated(t *testing.T) {
	payload := MarshalImage(&Image{Width: 4, Height: 4, Encoding: "mono8", Step: 4, Data: make([]byte, 16)})

	_, err := UnmarshalImage(payload[:len(payload)-5])
	if !errors.Is(err, cdr.ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
}

func TestCompressedImage_RoundTrip(t *testing.T) {
	want := &CompressedImage{
		Header: Header{FrameID: "cam1"},
		Format: "jpeg",
		Data:   []byte{0xff, 0xd8, 0xff},
	}

	got, err := UnmarshalCompressedImage(MarshalCompressedImage(want))
	if err != nil {
		t.Fatalf("UnmarshalCompressedImage failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("compressed image mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshal_Dispatch(t *testing.T) {
	payload := MarshalImage(&Image{Encoding: "rgb8"})

	if _, err := Unmarshal("sensor_msgs/Image", payload); err != nil {
		t.Errorf("ROS 1 spelling should be accepted: %v", err)
	}
	if _, err := Unmarshal("std_msgs/msg/String", payload); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
	if !IsImageType(TypeCompressedImage) || IsImageType("nav_msgs/msg/Odometry") {
		t.Error("IsImageType returned wrong results")
	}
}
