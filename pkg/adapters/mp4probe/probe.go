// Package mp4probe reads the video track description of an MP4 file.
package mp4probe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

// ErrNoVideoTrack is returned when the file has no video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Info describes the first video track of an MP4 file.
type Info struct {
	// Codec is the sample entry fourcc, e.g. "mp4v" or "avc1".
	Codec string
	// ObjectType is the MPEG-4 object type from esds, 0 when absent.
	ObjectType byte
	Width      int
	Height     int
	Samples    int
	Duration   time.Duration
	Fragmented bool
}

// FPS returns the average frame rate.
func (i Info) FPS() float64 {
	if i.Duration <= 0 {
		return 0
	}
	return float64(i.Samples) / i.Duration.Seconds()
}

// ProbeFile probes the MP4 file at path.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Probe(f)
}

// ProbeBytes probes MP4 data held in memory.
func ProbeBytes(data []byte) (Info, error) {
	return Probe(bytes.NewReader(data))
}

// Probe parses an MP4 stream.
func Probe(r io.ReadSeeker) (Info, error) {
	file, err := mp4.DecodeFile(r)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	if file.IsFragmented() {
		return probeFragmented(file)
	}
	return probeProgressive(file)
}

func findVideoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	if moov == nil {
		return nil
	}
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

// describeTrack fills codec and dimensions from the sample description.
func describeTrack(trak *mp4.TrakBox, info *Info) {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		entry := visualEntry(child)
		if entry == nil {
			continue
		}
		info.Codec = entry.Type()
		info.Width = int(entry.Width)
		info.Height = int(entry.Height)
		for _, sub := range entry.Children {
			if esds, ok := sub.(*mp4.EsdsBox); ok && esds.DecConfigDescriptor != nil {
				info.ObjectType = esds.DecConfigDescriptor.ObjectType
			}
		}
		return
	}
}

// undecodedVisualEntries are visual sample entries mp4ff keeps as unknown boxes.
var undecodedVisualEntries = map[string]bool{
	"mp4v": true,
}

func visualEntry(box mp4.Box) *mp4.VisualSampleEntryBox {
	switch b := box.(type) {
	case *mp4.VisualSampleEntryBox:
		return b
	case *mp4.UnknownBox:
		if !undecodedVisualEntries[b.Type()] {
			return nil
		}
		entry, err := decodeVisualEntry(b)
		if err != nil {
			return nil
		}
		return entry
	default:
		return nil
	}
}

// decodeVisualEntry re-reads the raw bytes of an unknown box as a
// VisualSampleEntry, which also decodes its esds child.
func decodeVisualEntry(box *mp4.UnknownBox) (*mp4.VisualSampleEntryBox, error) {
	var buf bytes.Buffer
	if err := box.Encode(&buf); err != nil {
		return nil, err
	}
	r := bytes.NewReader(buf.Bytes())
	hdr, err := mp4.DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	decoded, err := mp4.DecodeVisualSampleEntry(hdr, 0, r)
	if err != nil {
		return nil, err
	}
	entry, ok := decoded.(*mp4.VisualSampleEntryBox)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected box %T", box.Type(), decoded)
	}
	return entry, nil
}

func timescaleOf(trak *mp4.TrakBox) uint32 {
	if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale != 0 {
		return trak.Mdia.Mdhd.Timescale
	}
	return 1000
}

func ticksToDuration(ticks uint64, timescale uint32) time.Duration {
	return time.Duration(ticks * uint64(time.Second) / uint64(timescale))
}

func probeProgressive(file *mp4.File) (Info, error) {
	trak := findVideoTrack(file.Moov)
	if trak == nil {
		return Info{}, ErrNoVideoTrack
	}

	info := Info{}
	describeTrack(trak, &info)
	if stsz := trak.Mdia.Minf.Stbl.Stsz; stsz != nil {
		info.Samples = int(stsz.SampleNumber)
	}
	if trak.Mdia.Mdhd != nil {
		info.Duration = ticksToDuration(trak.Mdia.Mdhd.Duration, timescaleOf(trak))
	}
	return info, nil
}

func probeFragmented(file *mp4.File) (Info, error) {
	if file.Init == nil {
		return Info{}, ErrNoVideoTrack
	}
	trak := findVideoTrack(file.Init.Moov)
	if trak == nil {
		return Info{}, ErrNoVideoTrack
	}

	info := Info{Fragmented: true}
	describeTrack(trak, &info)

	trackID := trak.Tkhd.TrackID
	var trex *mp4.TrexBox
	if file.Init.Moov.Mvex != nil {
		for _, t := range file.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var ticks uint64
	for _, seg := range file.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return Info{}, fmt.Errorf("get samples: %w", err)
			}
			info.Samples += len(samples)
			for _, s := range samples {
				ticks += uint64(s.Dur)
			}
		}
	}
	info.Duration = ticksToDuration(ticks, timescaleOf(trak))
	return info, nil
}
