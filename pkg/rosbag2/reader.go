package rosbag2

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/bag2mp4/pkg/ports"
)

// Reader iterates the records of a bag in recording order. It is not safe
// for concurrent use.
type Reader struct {
	session  *Session
	logger   ports.Logger
	dir      string
	metadata *Metadata
	topics   []TopicMetadata
	files    []string

	fileIdx int
	current *sqliteFile
	rows    *sql.Rows
	scratch string

	pending    *Message
	pendingErr error
	done       bool
	closed     bool

	messageDec *messageDecompressor
}

func openReader(ctx context.Context, s *Session, storage StorageOptions, converter ConverterOptions) (*Reader, error) {
	if converter.InputSerializationFormat != converter.OutputSerializationFormat {
		return nil, fmt.Errorf("no converter from %q to %q", converter.InputSerializationFormat, converter.OutputSerializationFormat)
	}

	info, err := os.Stat(storage.URI)
	if err != nil {
		return nil, err
	}

	r := &Reader{session: s, logger: s.logger}
	if info.IsDir() {
		r.dir = storage.URI
		err = r.loadDirectory(ctx)
	} else {
		r.dir = filepath.Dir(storage.URI)
		err = r.loadSingleFile(ctx, storage.URI)
	}
	if err != nil {
		return nil, err
	}

	if storage.StorageID != "" && storage.StorageID != r.metadata.StorageIdentifier {
		return nil, fmt.Errorf("storage identifier %q requested but bag uses %q", storage.StorageID, r.metadata.StorageIdentifier)
	}
	if r.metadata.StorageIdentifier != StorageSQLite3 {
		return nil, fmt.Errorf("unsupported storage identifier %q", r.metadata.StorageIdentifier)
	}
	for _, t := range r.topics {
		if t.SerializationFormat != "" && t.SerializationFormat != converter.OutputSerializationFormat {
			return nil, fmt.Errorf("topic %s is serialized as %q, no converter to %q", t.Name, t.SerializationFormat, converter.OutputSerializationFormat)
		}
	}

	if r.metadata.Compressed() && r.metadata.CompressionMode == CompressionModeMessage {
		if r.messageDec, err = newMessageDecompressor(); err != nil {
			return nil, err
		}
	}

	// Open the first storage file eagerly so broken bags fail here.
	if len(r.files) > 0 {
		if err := r.openFile(ctx, 0); err != nil {
			r.Close()
			return nil, err
		}
	} else {
		r.done = true
	}
	return r, nil
}

func (r *Reader) loadDirectory(ctx context.Context) error {
	md, err := ReadMetadata(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return r.reindex(ctx)
	}
	if err != nil {
		return err
	}
	if err := checkCompression(md); err != nil {
		return err
	}

	r.metadata = md
	r.topics = md.Topics
	for _, rel := range md.RelativeFilePaths {
		path, err := r.resolve(rel)
		if err != nil {
			return err
		}
		r.files = append(r.files, path)
	}
	if len(r.topics) == 0 && md.MessageCount > 0 {
		return r.catalogFromStorage(ctx)
	}
	return nil
}

// resolve finds a storage file listed in metadata.yaml. Bags written by old
// distributions list paths relative to the parent of the bag directory.
func (r *Reader) resolve(rel string) (string, error) {
	candidates := []string{
		filepath.Join(r.dir, rel),
		filepath.Join(filepath.Dir(r.dir), rel),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("storage file %s: %w", rel, fs.ErrNotExist)
}

// reindex rebuilds the metadata of a directory that lost its metadata.yaml
// by scanning the .db3 files in lexical order.
func (r *Reader) reindex(ctx context.Context) error {
	files, err := filepath.Glob(filepath.Join(r.dir, "*.db3"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%s: %w", MetadataFilename, fs.ErrNotExist)
	}
	sort.Strings(files)

	r.logger.Warn("%s not found in %s, scanning %d storage files", MetadataFilename, r.dir, len(files))
	r.files = files
	r.metadata = &Metadata{StorageIdentifier: StorageSQLite3}
	for _, f := range files {
		r.metadata.RelativeFilePaths = append(r.metadata.RelativeFilePaths, filepath.Base(f))
	}
	return r.catalogFromStorage(ctx)
}

func (r *Reader) loadSingleFile(ctx context.Context, path string) error {
	if !strings.HasSuffix(path, ".db3") {
		return fmt.Errorf("%s is neither a bag directory nor a .db3 file", path)
	}
	r.files = []string{path}
	r.metadata = &Metadata{
		StorageIdentifier: StorageSQLite3,
		RelativeFilePaths: []string{filepath.Base(path)},
	}
	return r.catalogFromStorage(ctx)
}

func (r *Reader) catalogFromStorage(ctx context.Context) error {
	var parts [][]TopicMetadata
	for _, path := range r.files {
		f, err := openSQLiteFile(ctx, path)
		if err != nil {
			return err
		}
		topics, err := f.catalog(ctx)
		f.close()
		if err != nil {
			return fmt.Errorf("read catalog of %s: %w", path, err)
		}
		parts = append(parts, topics)
	}
	r.topics = mergeCatalogs(parts...)
	r.metadata.Topics = r.topics
	for _, t := range r.topics {
		r.metadata.MessageCount += t.MessageCount
	}
	return nil
}

// Metadata returns the bag description. For reindexed bags it is synthesized
// from the storage files.
func (r *Reader) Metadata() *Metadata {
	return r.metadata
}

// Topics returns the channel catalog.
func (r *Reader) Topics() []TopicMetadata {
	out := make([]TopicMetadata, len(r.topics))
	copy(out, r.topics)
	return out
}

// HasNext reports whether ReadNext will return a record or an error.
func (r *Reader) HasNext() bool {
	if r.closed {
		return false
	}
	if r.pending != nil || r.pendingErr != nil {
		return true
	}
	r.advance()
	return r.pending != nil || r.pendingErr != nil
}

// ReadNext returns the next record. After the last record it returns ErrEndOfBag.
func (r *Reader) ReadNext() (Message, error) {
	if r.closed {
		return Message{}, ErrClosed
	}
	if !r.HasNext() {
		return Message{}, ErrEndOfBag
	}
	if r.pendingErr != nil {
		err := r.pendingErr
		r.pendingErr = nil
		return Message{}, err
	}
	msg := *r.pending
	r.pending = nil
	return msg, nil
}

func (r *Reader) advance() {
	ctx := context.Background()
	for !r.done {
		if r.rows == nil {
			if r.fileIdx >= len(r.files) {
				r.done = true
				return
			}
			if err := r.openFile(ctx, r.fileIdx); err != nil {
				r.pendingErr = err
				r.done = true
				return
			}
		}

		if r.rows.Next() {
			msg, err := r.current.scanMessage(r.rows)
			if err == nil && r.messageDec != nil {
				if msg.Data, err = r.messageDec.decompress(msg.Data); err != nil {
					err = &RecordError{Topic: msg.Topic, Err: err}
				}
			}
			if err != nil {
				r.pendingErr = err
				return
			}
			r.pending = &msg
			return
		}

		if err := r.rows.Err(); err != nil {
			r.pendingErr = fmt.Errorf("read %s: %w", r.current.path, err)
			r.done = true
			r.closeFile()
			return
		}
		r.closeFile()
		r.fileIdx++
	}
}

func (r *Reader) openFile(ctx context.Context, idx int) error {
	path := r.files[idx]
	if strings.HasSuffix(path, zstdExtension) {
		dir, err := r.session.scratchDir()
		if err != nil {
			return err
		}
		plain, err := decompressFile(path, dir)
		if err != nil {
			return err
		}
		r.logger.Debug("Decompressed %s", filepath.Base(path))
		r.scratch = plain
		path = plain
	}

	f, err := openSQLiteFile(ctx, path)
	if err != nil {
		r.removeScratch()
		return err
	}
	rows, err := f.messages(ctx)
	if err != nil {
		f.close()
		r.removeScratch()
		return fmt.Errorf("query messages of %s: %w", path, err)
	}
	r.fileIdx = idx
	r.current = f
	r.rows = rows
	return nil
}

func (r *Reader) closeFile() {
	if r.rows != nil {
		r.rows.Close()
		r.rows = nil
	}
	if r.current != nil {
		r.current.close()
		r.current = nil
	}
	r.removeScratch()
}

func (r *Reader) removeScratch() {
	if r.scratch != "" {
		os.Remove(r.scratch)
		r.scratch = ""
	}
}

// Close releases the storage handles. It is safe to call more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.closeFile()
	if r.messageDec != nil {
		r.messageDec.close()
	}
	if r.session != nil {
		r.session.release(r)
	}
	return nil
}
