package imageconv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/user/bag2mp4/pkg/msgs"
)

// Encoding names from sensor_msgs/image_encodings.
const (
	EncodingRGB8     = "rgb8"
	EncodingBGR8     = "bgr8"
	EncodingRGBA8    = "rgba8"
	EncodingBGRA8    = "bgra8"
	EncodingMono8    = "mono8"
	EncodingMono16   = "mono16"
	Encoding8UC1     = "8UC1"
	Encoding8UC3     = "8UC3"
	Encoding8UC4     = "8UC4"
	Encoding16UC1    = "16UC1"
	EncodingYUV422   = "yuv422"
	EncodingUYVY     = "uyvy"
	EncodingYUV422Y2 = "yuv422_yuy2"
	EncodingYUYV     = "yuyv"
)

var (
	// ErrUnsupportedEncoding is returned for pixel encodings without a BGR conversion.
	ErrUnsupportedEncoding = errors.New("imageconv: unsupported encoding")

	// ErrInvalidImage is returned when the image geometry does not match its data.
	ErrInvalidImage = errors.New("imageconv: invalid image")
)

// pixelLayout describes how one encoding maps to BGR.
type pixelLayout struct {
	bytesPerPixel int
	convertRow    func(dst, src []byte, width int, bigEndian bool)
}

var layouts = map[string]pixelLayout{
	EncodingBGR8:     {3, copyRow},
	Encoding8UC3:     {3, copyRow},
	EncodingRGB8:     {3, swapRow3},
	EncodingBGRA8:    {4, bgraRow},
	Encoding8UC4:     {4, bgraRow},
	EncodingRGBA8:    {4, rgbaRow},
	EncodingMono8:    {1, monoRow},
	Encoding8UC1:     {1, monoRow},
	EncodingMono16:   {2, mono16Row},
	Encoding16UC1:    {2, mono16Row},
	EncodingYUV422:   {2, uyvyRow},
	EncodingUYVY:     {2, uyvyRow},
	EncodingYUV422Y2: {2, yuyvRow},
	EncodingYUYV:     {2, yuyvRow},
}

// SupportedEncodings returns the raw encodings ToBGR accepts.
func SupportedEncodings() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	return names
}

// ToBGR converts a raw image message into a BGR frame, honouring Step and IsBigEndian.
func ToBGR(msg *msgs.Image) (*BGR, error) {
	layout, ok := layouts[msg.Encoding]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, msg.Encoding)
	}

	if msg.Width == 0 || msg.Height == 0 {
		return nil, fmt.Errorf("%w: empty %dx%d image", ErrInvalidImage, msg.Width, msg.Height)
	}
	// Bound the geometry by the payload before allocating.
	size := uint64(len(msg.Data))
	rowBytes64 := uint64(msg.Width) * uint64(layout.bytesPerPixel)
	step64 := uint64(msg.Step)
	if step64 < rowBytes64 {
		return nil, fmt.Errorf("%w: step %d shorter than %d bytes per row", ErrInvalidImage, msg.Step, rowBytes64)
	}
	if rowBytes64 > size || uint64(msg.Height-1) > (size-rowBytes64)/step64 {
		return nil, fmt.Errorf("%w: %d data bytes for %dx%d %s with step %d", ErrInvalidImage, len(msg.Data), msg.Width, msg.Height, msg.Encoding, msg.Step)
	}
	width, height := int(msg.Width), int(msg.Height)
	rowBytes, step := int(rowBytes64), int(msg.Step)
	if (layout.bytesPerPixel == 2 && isPacked422(msg.Encoding)) && width%2 != 0 {
		return nil, fmt.Errorf("%w: odd width %d for %s", ErrInvalidImage, width, msg.Encoding)
	}

	dst := NewBGR(image.Rect(0, 0, width, height))
	bigEndian := msg.IsBigEndian != 0
	for y := 0; y < height; y++ {
		src := msg.Data[y*step : y*step+rowBytes]
		layout.convertRow(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src, width, bigEndian)
	}
	return dst, nil
}

func isPacked422(encoding string) bool {
	switch encoding {
	case EncodingYUV422, EncodingUYVY, EncodingYUV422Y2, EncodingYUYV:
		return true
	}
	return false
}

func copyRow(dst, src []byte, width int, _ bool) {
	copy(dst, src[:width*3])
}

func swapRow3(dst, src []byte, width int, _ bool) {
	for x := 0; x < width; x++ {
		dst[3*x+0] = src[3*x+2]
		dst[3*x+1] = src[3*x+1]
		dst[3*x+2] = src[3*x+0]
	}
}

func bgraRow(dst, src []byte, width int, _ bool) {
	for x := 0; x < width; x++ {
		copy(dst[3*x:3*x+3], src[4*x:4*x+3])
	}
}

func rgbaRow(dst, src []byte, width int, _ bool) {
	for x := 0; x < width; x++ {
		dst[3*x+0] = src[4*x+2]
		dst[3*x+1] = src[4*x+1]
		dst[3*x+2] = src[4*x+0]
	}
}

func monoRow(dst, src []byte, width int, _ bool) {
	for x := 0; x < width; x++ {
		v := src[x]
		dst[3*x+0], dst[3*x+1], dst[3*x+2] = v, v, v
	}
}

// mono16Row keeps the high byte of each sample.
func mono16Row(dst, src []byte, width int, bigEndian bool) {
	var order binary.ByteOrder = binary.LittleEndian
	if bigEndian {
		order = binary.BigEndian
	}
	for x := 0; x < width; x++ {
		v := uint8(order.Uint16(src[2*x:]) >> 8)
		dst[3*x+0], dst[3*x+1], dst[3*x+2] = v, v, v
	}
}

// uyvyRow converts U Y0 V Y1 macropixels.
func uyvyRow(dst, src []byte, width int, _ bool) {
	for x := 0; x < width; x += 2 {
		m := src[2*x : 2*x+4]
		putYCbCr(dst[3*x:], m[1], m[0], m[2])
		putYCbCr(dst[3*(x+1):], m[3], m[0], m[2])
	}
}

// yuyvRow converts Y0 U Y1 V macropixels.
func yuyvRow(dst, src []byte, width int, _ bool) {
	for x := 0; x < width; x += 2 {
		m := src[2*x : 2*x+4]
		putYCbCr(dst[3*x:], m[0], m[1], m[3])
		putYCbCr(dst[3*(x+1):], m[2], m[1], m[3])
	}
}

func putYCbCr(dst []byte, y, cb, cr uint8) {
	r, g, b := color.YCbCrToRGB(y, cb, cr)
	dst[0], dst[1], dst[2] = b, g, r
}
