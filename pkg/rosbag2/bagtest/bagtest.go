// Package bagtest writes small rosbag2 sqlite3 bags for tests.
package bagtest

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"

	"github.com/user/bag2mp4/pkg/msgs"
	"github.com/user/bag2mp4/pkg/rosbag2"
)

const schema = `
CREATE TABLE schema(schema_version INTEGER PRIMARY KEY, ros_distro TEXT NOT NULL);
CREATE TABLE metadata(id INTEGER PRIMARY KEY, metadata_version INTEGER NOT NULL, metadata TEXT NOT NULL);
CREATE TABLE topics(id INTEGER PRIMARY KEY, name TEXT NOT NULL, type TEXT NOT NULL, serialization_format TEXT NOT NULL, offered_qos_profiles TEXT NOT NULL, type_description_hash TEXT NOT NULL);
CREATE TABLE messages(id INTEGER PRIMARY KEY, topic_id INTEGER NOT NULL, timestamp INTEGER NOT NULL, data BLOB NOT NULL);
CREATE INDEX timestamp_idx ON messages (timestamp ASC);
INSERT INTO schema(schema_version, ros_distro) VALUES (4, 'humble');
`

// Option configures a Writer.
type Option func(*Writer)

// WithCompression writes a zstd-compressed bag in the given mode
// (rosbag2.CompressionModeFile or rosbag2.CompressionModeMessage).
func WithCompression(mode string) Option {
	return func(w *Writer) {
		w.compressionMode = mode
	}
}

// WithoutMetadata skips metadata.yaml, leaving only storage files.
func WithoutMetadata() Option {
	return func(w *Writer) {
		w.skipMetadata = true
	}
}

type topic struct {
	meta rosbag2.TopicMetadata
	id   int64
}

// Writer creates a bag directory. Topics must be added before messages on them.
type Writer struct {
	dir             string
	compressionMode string
	skipMetadata    bool

	db      *sql.DB
	path    string
	files   []string
	topics  []*topic
	byName  map[string]*topic
	encoder *zstd.Encoder

	first, last time.Time
	count       int
}

// Create makes dir and opens its first storage file.
func Create(dir string, opts ...Option) (*Writer, error) {
	w := &Writer{dir: dir, byName: make(map[string]*topic)}
	for _, opt := range opts {
		opt(w)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if w.compressionMode != "" {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		w.encoder = enc
	}
	if err := w.openFile(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) openFile() error {
	name := fmt.Sprintf("%s_%d.db3", filepath.Base(w.dir), len(w.files))
	w.path = filepath.Join(w.dir, name)
	db, err := sql.Open("sqlite3", w.path)
	if err != nil {
		return err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("create schema: %w", err)
	}
	w.db = db
	for _, t := range w.topics {
		if err := w.insertTopic(t); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) insertTopic(t *topic) error {
	res, err := w.db.Exec(
		`INSERT INTO topics(name, type, serialization_format, offered_qos_profiles, type_description_hash) VALUES (?, ?, ?, '', '')`,
		t.meta.Name, t.meta.Type, t.meta.SerializationFormat)
	if err != nil {
		return err
	}
	t.id, err = res.LastInsertId()
	return err
}

// AddTopic registers a cdr topic.
func (w *Writer) AddTopic(name, typeName string) error {
	return w.AddTopicWithFormat(name, typeName, rosbag2.SerializationCDR)
}

// AddTopicWithFormat registers a topic with an explicit serialization format.
func (w *Writer) AddTopicWithFormat(name, typeName, format string) error {
	if _, ok := w.byName[name]; ok {
		return fmt.Errorf("topic %s already added", name)
	}
	t := &topic{meta: rosbag2.TopicMetadata{Name: name, Type: typeName, SerializationFormat: format}}
	if err := w.insertTopic(t); err != nil {
		return err
	}
	w.topics = append(w.topics, t)
	w.byName[name] = t
	return nil
}

// Write appends one serialized message.
func (w *Writer) Write(topicName string, stamp time.Time, data []byte) error {
	if w.compressionMode == rosbag2.CompressionModeMessage {
		data = w.encoder.EncodeAll(data, nil)
	}
	return w.WriteRaw(topicName, stamp, data)
}

// WriteRaw appends data as stored, skipping per-message compression.
func (w *Writer) WriteRaw(topicName string, stamp time.Time, data []byte) error {
	t, ok := w.byName[topicName]
	if !ok {
		return fmt.Errorf("topic %s not added", topicName)
	}
	if _, err := w.db.Exec(`INSERT INTO messages(topic_id, timestamp, data) VALUES (?, ?, ?)`, t.id, stamp.UnixNano(), data); err != nil {
		return err
	}

	t.meta.MessageCount++
	w.count++
	if w.first.IsZero() || stamp.Before(w.first) {
		w.first = stamp
	}
	if stamp.After(w.last) {
		w.last = stamp
	}
	return nil
}

// WriteOrphan appends a message whose topic_id matches no topic.
func (w *Writer) WriteOrphan(stamp time.Time, data []byte) error {
	if _, err := w.db.Exec(`INSERT INTO messages(topic_id, timestamp, data) VALUES (?, ?, ?)`, int64(1<<31), stamp.UnixNano(), data); err != nil {
		return err
	}
	w.count++
	return nil
}

// Split closes the current storage file and starts the next one.
func (w *Writer) Split() error {
	if err := w.closeFile(); err != nil {
		return err
	}
	return w.openFile()
}

func (w *Writer) closeFile() error {
	if err := w.db.Close(); err != nil {
		return err
	}
	path := w.path
	if w.compressionMode == rosbag2.CompressionModeFile {
		compressed, err := compressFile(path)
		if err != nil {
			return err
		}
		path = compressed
	}
	w.files = append(w.files, filepath.Base(path))
	return nil
}

func compressFile(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	outPath := path + ".zstd"
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	enc, err := zstd.NewWriter(out)
	if err != nil {
		out.Close()
		return "", err
	}
	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		out.Close()
		return "", err
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return outPath, os.Remove(path)
}

// Close finalizes the storage files and writes metadata.yaml.
func (w *Writer) Close() error {
	if err := w.closeFile(); err != nil {
		return err
	}
	if w.encoder != nil {
		w.encoder.Close()
	}
	if w.skipMetadata {
		return nil
	}

	md := &rosbag2.Metadata{
		Version:           5,
		StorageIdentifier: rosbag2.StorageSQLite3,
		MessageCount:      w.count,
		RelativeFilePaths: w.files,
	}
	if w.count > 0 {
		md.StartingTime = w.first
		md.Duration = w.last.Sub(w.first)
	}
	if w.compressionMode != "" {
		md.CompressionFormat = rosbag2.CompressionZstd
		md.CompressionMode = w.compressionMode
	}
	for _, t := range w.topics {
		md.Topics = append(md.Topics, t.meta)
	}
	data, err := rosbag2.MarshalMetadata(md)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(w.dir, rosbag2.MetadataFilename), data, 0644)
}

// FrameID is the header frame_id of generated images.
const FrameID = "camera_optical_frame"

// Stamp returns a deterministic timestamp i steps of 100ms after a fixed epoch.
func Stamp(i int) time.Time {
	return time.Unix(1700000000, 0).Add(time.Duration(i) * 100 * time.Millisecond)
}

// RawImage serializes a sensor_msgs/msg/Image filled with one byte value.
func RawImage(stamp time.Time, width, height int, encoding string, bytesPerPixel int, fill byte) []byte {
	step := width * bytesPerPixel
	data := make([]byte, step*height)
	for i := range data {
		data[i] = fill
	}
	return msgs.MarshalImage(&msgs.Image{
		Header: msgs.Header{
			Stamp:   msgs.Time{Sec: int32(stamp.Unix()), Nanosec: uint32(stamp.Nanosecond())},
			FrameID: FrameID,
		},
		Height:   uint32(height),
		Width:    uint32(width),
		Encoding: encoding,
		Step:     uint32(step),
		Data:     data,
	})
}

// BGRImage serializes a bgr8 image.
func BGRImage(stamp time.Time, width, height int, fill byte) []byte {
	return RawImage(stamp, width, height, "bgr8", 3, fill)
}
