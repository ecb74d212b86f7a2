package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Source provides random access to the bytes of one audio file.
// The size must be known up front and must not change for the duration
// of a transcription attempt.
type Source interface {
	io.ReaderAt

	// Size returns the total byte length of the audio data.
	Size() int64

	// Name returns the base filename, including extension.
	Name() string

	// ContentType returns the MIME type derived from the extension.
	ContentType() string
}

// contentTypes maps supported audio extensions to MIME types.
var contentTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".flac": "audio/flac",
	".webm": "audio/webm",
}

// ContentTypeFor returns the MIME type for a filename, or false if the
// extension is not a supported audio format.
func ContentTypeFor(name string) (string, bool) {
	ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]
	return ct, ok
}

// FileSource is a Source backed by a file on disk.
type FileSource struct {
	file *os.File
	name string
	size int64
}

// OpenFile opens a file as an audio source. The caller owns the source
// and must Close it after the transcription attempt completes.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat audio file: %w", err)
	}

	return &FileSource{
		file: f,
		name: filepath.Base(path),
		size: info.Size(),
	}, nil
}

// ReadAt reads len(p) bytes at the given offset.
func (s *FileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

// Size returns the file size in bytes.
func (s *FileSource) Size() int64 {
	return s.size
}

// Name returns the base filename.
func (s *FileSource) Name() string {
	return s.name
}

// ContentType returns the MIME type for the file extension, or
// "application/octet-stream" for unknown extensions.
func (s *FileSource) ContentType() string {
	if ct, ok := ContentTypeFor(s.name); ok {
		return ct
	}
	return "application/octet-stream"
}

// Close releases the underlying file.
func (s *FileSource) Close() error {
	return s.file.Close()
}

// BytesSource is a Source backed by an in-memory byte slice.
type BytesSource struct {
	name string
	data []byte
}

// NewBytes creates an in-memory audio source.
func NewBytes(name string, data []byte) *BytesSource {
	return &BytesSource{name: name, data: data}
}

// ReadAt reads from the in-memory buffer at the given offset.
func (s *BytesSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(s.data)) {
		return 0, fmt.Errorf("read offset %d out of range (size %d)", off, len(s.data))
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the buffer length.
func (s *BytesSource) Size() int64 {
	return int64(len(s.data))
}

// Name returns the source name.
func (s *BytesSource) Name() string {
	return s.name
}

// ContentType returns the MIME type for the name's extension, or
// "application/octet-stream" for unknown extensions.
func (s *BytesSource) ContentType() string {
	if ct, ok := ContentTypeFor(s.name); ok {
		return ct
	}
	return "application/octet-stream"
}
