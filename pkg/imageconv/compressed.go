package imageconv

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/user/bag2mp4/pkg/msgs"
)

// compressedDepthHeaderSize is the size of the depth quantization header that
// compressed_depth_image_transport prepends to the PNG stream.
const compressedDepthHeaderSize = 12

// maxCompressedPixels caps the size a compressed payload may declare.
const maxCompressedPixels = 1 << 28

// CompressedToBGR decodes a compressed image message into a BGR frame.
// The container format is sniffed from the data; Format is only consulted for
// the compressedDepth prefix.
func CompressedToBGR(msg *msgs.CompressedImage) (*BGR, error) {
	data := msg.Data
	if strings.Contains(msg.Format, "compressedDepth") {
		if len(data) < compressedDepthHeaderSize {
			return nil, fmt.Errorf("%w: compressedDepth payload of %d bytes", ErrInvalidImage, len(data))
		}
		data = data[compressedDepthHeaderSize:]
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %q payload: %v", ErrUnsupportedEncoding, msg.Format, err)
	}
	if uint64(cfg.Width)*uint64(cfg.Height) > maxCompressedPixels {
		return nil, fmt.Errorf("%w: %q payload declares %dx%d", ErrInvalidImage, msg.Format, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %q payload: %v", ErrUnsupportedEncoding, msg.Format, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty %s image", ErrInvalidImage, format)
	}
	return FromImage(img), nil
}
