package ports

// FileSystem abstracts the file operations around the output video.
type FileSystem interface {
	// WriteFile writes data to a file, creating parent directories if necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error
}
