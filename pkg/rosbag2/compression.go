package rosbag2

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const zstdExtension = ".zstd"

// checkCompression validates the compression settings of a bag.
func checkCompression(md *Metadata) error {
	if !md.Compressed() {
		return nil
	}
	if md.CompressionFormat != CompressionZstd {
		return fmt.Errorf("%w: format %q", ErrUnsupportedCompression, md.CompressionFormat)
	}
	switch md.CompressionMode {
	case CompressionModeFile, CompressionModeMessage:
		return nil
	default:
		return fmt.Errorf("%w: mode %q", ErrUnsupportedCompression, md.CompressionMode)
	}
}

// decompressFile inflates a zstd-compressed storage file into dir and returns
// the path of the plain copy.
func decompressFile(src, dir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return "", fmt.Errorf("zstd reader for %s: %w", src, err)
	}
	defer dec.Close()

	name := strings.TrimSuffix(filepath.Base(src), zstdExtension)
	out, err := os.CreateTemp(dir, "*-"+name)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, dec); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("decompress %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

// messageDecompressor inflates individual payloads of MESSAGE-mode bags.
type messageDecompressor struct {
	dec *zstd.Decoder
}

func newMessageDecompressor() (*messageDecompressor, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &messageDecompressor{dec: dec}, nil
}

func (m *messageDecompressor) decompress(data []byte) ([]byte, error) {
	out, err := m.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress message: %w", err)
	}
	return out, nil
}

func (m *messageDecompressor) close() {
	m.dec.Close()
}
