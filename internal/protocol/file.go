package protocol

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Encoding used for inline file data.
type FileFormat string

const (

	// Hex-encoded bytes. The historical default, kept for compatibility
	// with hex payloads produced by older clients.
	FormatHex FileFormat = "hex"

	// Base64-encoded bytes. The default for new payloads.
	FormatBinary FileFormat = "binary"
)

// Maximum size for inlining file data into a message.
const InlineLimit = 20 * 1024

// A file transferred between client and daemon.
//
// Small files travel inline in the encoded format; larger files are passed
// by path and must be readable by the daemon. Size always reflects the
// original byte length.
type File struct {
	Name   string     `json:"name"`
	Format FileFormat `json:"format"`
	Data   string     `json:"data,omitempty"`
	Path   string     `json:"path,omitempty"`
	Size   int64      `json:"size"`
}

// Builds a [File] payload from a file on disk.
//
// Content under [InlineLimit] bytes is inlined base64-encoded; anything
// larger is referenced by absolute path.
func NewFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}

	f := File{
		Name:   filepath.Base(path),
		Format: FormatBinary,
		Size:   info.Size(),
	}

	if info.Size() >= InlineLimit {
		abs, err := filepath.Abs(path)
		if err != nil {
			return File{}, err
		}
		f.Path = abs
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}
	f.Data = base64.StdEncoding.EncodeToString(data)

	return f, nil
}

// Returns the file content.
//
// Inline data is decoded according to the format; path references are read
// from disk. A file is inline exactly when it carries no path, so an empty
// inlined file decodes to empty content rather than an error.
func (f File) Bytes() ([]byte, error) {
	if f.Path != "" {
		return os.ReadFile(f.Path)
	}

	switch f.Format {
	case FormatHex:
		return hex.DecodeString(f.Data)
	case FormatBinary, "":
		return base64.StdEncoding.DecodeString(f.Data)
	default:
		return nil, fmt.Errorf("unknown file format %q", f.Format)
	}
}

// Whether the file content travels inline in the message.
func (f File) Inline() bool {
	return f.Path == ""
}
