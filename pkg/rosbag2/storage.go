package rosbag2

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteFile is one open .db3 storage file.
type sqliteFile struct {
	path   string
	db     *sql.DB
	topics map[int64]string
}

func openSQLiteFile(ctx context.Context, path string) (*sqliteFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dsn := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}).String()

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	f := &sqliteFile{path: path, db: db}
	if err := f.loadTopicIDs(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open storage file %s: %w", path, err)
	}
	return f, nil
}

func (f *sqliteFile) loadTopicIDs(ctx context.Context) error {
	rows, err := f.db.QueryContext(ctx, `SELECT id, name FROM topics`)
	if err != nil {
		return err
	}
	defer rows.Close()

	f.topics = make(map[int64]string)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		f.topics[id] = name
	}
	return rows.Err()
}

// catalog lists the topics of the file together with their message counts.
func (f *sqliteFile) catalog(ctx context.Context) ([]TopicMetadata, error) {
	rows, err := f.db.QueryContext(ctx, `
		SELECT t.name, t.type, t.serialization_format, COUNT(m.id)
		FROM topics t LEFT JOIN messages m ON m.topic_id = t.id
		GROUP BY t.id
		ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []TopicMetadata
	for rows.Next() {
		var t TopicMetadata
		if err := rows.Scan(&t.Name, &t.Type, &t.SerializationFormat, &t.MessageCount); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (f *sqliteFile) messages(ctx context.Context) (*sql.Rows, error) {
	return f.db.QueryContext(ctx, `SELECT topic_id, timestamp, data FROM messages ORDER BY timestamp, id`)
}

func (f *sqliteFile) scanMessage(rows *sql.Rows) (Message, error) {
	var (
		topicID int64
		stamp   int64
		data    []byte
	)
	if err := rows.Scan(&topicID, &stamp, &data); err != nil {
		return Message{}, &RecordError{Err: fmt.Errorf("%s: %w", f.path, err)}
	}
	name, ok := f.topics[topicID]
	if !ok {
		return Message{}, &RecordError{Err: fmt.Errorf("%s: message references unknown topic id %d", f.path, topicID)}
	}
	return Message{Topic: name, Data: data, Timestamp: time.Unix(0, stamp)}, nil
}

func (f *sqliteFile) close() error {
	return f.db.Close()
}

// mergeCatalogs folds per-file catalogs into one, summing message counts.
func mergeCatalogs(parts ...[]TopicMetadata) []TopicMetadata {
	var merged []TopicMetadata
	index := make(map[string]int)
	for _, part := range parts {
		for _, t := range part {
			if i, ok := index[t.Name]; ok {
				merged[i].MessageCount += t.MessageCount
				continue
			}
			index[t.Name] = len(merged)
			merged = append(merged, t)
		}
	}
	return merged
}
