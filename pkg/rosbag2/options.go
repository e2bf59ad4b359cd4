// Package rosbag2 reads ROS 2 bags recorded with the sqlite3 storage plugin.
//
// A bag is a directory holding metadata.yaml and one or more .db3 files
// (optionally zstd compressed). Readers are opened through a Session, which
// owns every reader and temporary file it creates until Close.
package rosbag2

import "time"

const (
	// StorageSQLite3 is the only storage identifier this package reads.
	StorageSQLite3 = "sqlite3"

	// SerializationCDR is the serialization format written by rmw implementations.
	SerializationCDR = "cdr"

	// CompressionZstd is the compression format name written by rosbag2_compression_zstd.
	CompressionZstd = "zstd"

	// Compression modes.
	CompressionModeNone    = "NONE"
	CompressionModeFile    = "FILE"
	CompressionModeMessage = "MESSAGE"
)

// StorageOptions selects the bag and its storage plugin.
type StorageOptions struct {
	URI       string
	StorageID string
}

// ConverterOptions declares the serialization the caller expects. No
// converter plugins exist here, so both formats must match the recording.
type ConverterOptions struct {
	InputSerializationFormat  string
	OutputSerializationFormat string
}

// DefaultConverterOptions returns the cdr-to-cdr pass-through pair.
func DefaultConverterOptions() ConverterOptions {
	return ConverterOptions{
		InputSerializationFormat:  SerializationCDR,
		OutputSerializationFormat: SerializationCDR,
	}
}

// TopicMetadata describes one channel in the bag catalog.
type TopicMetadata struct {
	Name                string
	Type                string
	SerializationFormat string
	MessageCount        int
}

// TopicTypes maps topic names to message type names.
type TopicTypes map[string]string

// TypesOf builds the name to type map for a catalog.
func TypesOf(topics []TopicMetadata) TopicTypes {
	types := make(TopicTypes, len(topics))
	for _, t := range topics {
		types[t.Name] = t.Type
	}
	return types
}

// Message is one serialized record.
type Message struct {
	Topic     string
	Data      []byte
	Timestamp time.Time
}
