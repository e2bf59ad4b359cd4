package rosbag2

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// MetadataFilename is the bag descriptor inside a bag directory.
const MetadataFilename = "metadata.yaml"

// Metadata is the content of metadata.yaml.
type Metadata struct {
	Version           int
	StorageIdentifier string
	Duration          time.Duration
	StartingTime      time.Time
	MessageCount      int
	Topics            []TopicMetadata
	CompressionFormat string
	CompressionMode   string
	RelativeFilePaths []string
}

// Compressed reports whether the bag uses any compression.
func (m *Metadata) Compressed() bool {
	return m.CompressionFormat != "" && m.CompressionMode != "" && m.CompressionMode != CompressionModeNone
}

type metadataDocument struct {
	Info bagfileInformation `yaml:"rosbag2_bagfile_information"`
}

type bagfileInformation struct {
	Version                int                     `yaml:"version"`
	StorageIdentifier      string                  `yaml:"storage_identifier"`
	Duration               nanoseconds             `yaml:"duration"`
	StartingTime           nanosecondsSinceEpoch   `yaml:"starting_time"`
	MessageCount           int                     `yaml:"message_count"`
	TopicsWithMessageCount []topicWithMessageCount `yaml:"topics_with_message_count"`
	CompressionFormat      string                  `yaml:"compression_format"`
	CompressionMode        string                  `yaml:"compression_mode"`
	RelativeFilePaths      []string                `yaml:"relative_file_paths"`
}

type nanoseconds struct {
	Nanoseconds int64 `yaml:"nanoseconds"`
}

type nanosecondsSinceEpoch struct {
	NanosecondsSinceEpoch int64 `yaml:"nanoseconds_since_epoch"`
}

type topicWithMessageCount struct {
	TopicMetadata topicMetadataEntry `yaml:"topic_metadata"`
	MessageCount  int                `yaml:"message_count"`
}

type topicMetadataEntry struct {
	Name                string `yaml:"name"`
	Type                string `yaml:"type"`
	SerializationFormat string `yaml:"serialization_format"`

	// Humble writes a YAML string here, Jazzy a sequence.
	OfferedQoSProfiles yaml.Node `yaml:"offered_qos_profiles"`
}

// ParseMetadata decodes metadata.yaml content.
func ParseMetadata(data []byte) (*Metadata, error) {
	var doc metadataDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", MetadataFilename, err)
	}
	info := doc.Info
	if info.StorageIdentifier == "" {
		return nil, fmt.Errorf("parse %s: missing rosbag2_bagfile_information.storage_identifier", MetadataFilename)
	}

	md := &Metadata{
		Version:           info.Version,
		StorageIdentifier: info.StorageIdentifier,
		Duration:          time.Duration(info.Duration.Nanoseconds),
		StartingTime:      time.Unix(0, info.StartingTime.NanosecondsSinceEpoch),
		MessageCount:      info.MessageCount,
		CompressionFormat: info.CompressionFormat,
		CompressionMode:   info.CompressionMode,
		RelativeFilePaths: info.RelativeFilePaths,
	}
	for _, t := range info.TopicsWithMessageCount {
		md.Topics = append(md.Topics, TopicMetadata{
			Name:                t.TopicMetadata.Name,
			Type:                t.TopicMetadata.Type,
			SerializationFormat: t.TopicMetadata.SerializationFormat,
			MessageCount:        t.MessageCount,
		})
	}
	return md, nil
}

// ReadMetadata loads metadata.yaml from a bag directory.
func ReadMetadata(dir string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFilename))
	if err != nil {
		return nil, err
	}
	return ParseMetadata(data)
}

// MarshalMetadata encodes metadata in the layout rosbag2 writes.
func MarshalMetadata(md *Metadata) ([]byte, error) {
	doc := metadataDocument{Info: bagfileInformation{
		Version:           md.Version,
		StorageIdentifier: md.StorageIdentifier,
		Duration:          nanoseconds{Nanoseconds: int64(md.Duration)},
		StartingTime:      nanosecondsSinceEpoch{NanosecondsSinceEpoch: md.StartingTime.UnixNano()},
		MessageCount:      md.MessageCount,
		CompressionFormat: md.CompressionFormat,
		CompressionMode:   md.CompressionMode,
		RelativeFilePaths: md.RelativeFilePaths,
	}}
	for _, t := range md.Topics {
		doc.Info.TopicsWithMessageCount = append(doc.Info.TopicsWithMessageCount, topicWithMessageCount{
			TopicMetadata: topicMetadataEntry{
				Name:                t.Name,
				Type:                t.Type,
				SerializationFormat: t.SerializationFormat,
				OfferedQoSProfiles:  yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: ""},
			},
			MessageCount: t.MessageCount,
		})
	}
	return yaml.Marshal(&doc)
}
