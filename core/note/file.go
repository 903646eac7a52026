package note

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

const defaultContentType = "application/octet-stream"

// File is a single file handle chosen by the user.
type File interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type bytesFile struct {
	name string
	data []byte
}

// NewBytesFile returns a File holding data in memory.
func NewBytesFile(name string, data []byte) File {
	return &bytesFile{name: name, data: data}
}

func (f *bytesFile) Name() string { return f.name }

func (f *bytesFile) Size() int64 { return int64(len(f.data)) }

func (f *bytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// EncodeDataURL returns `data` as a base64 data URL, typed from the file extension or its content.
func EncodeDataURL(name string, data []byte) string {
	var sb strings.Builder
	enc := base64.StdEncoding
	sb.Grow(len("data:;base64,") + len(defaultContentType) + enc.EncodedLen(len(data)))
	sb.WriteString("data:")
	sb.WriteString(contentType(name, data))
	sb.WriteString(";base64,")
	sb.WriteString(enc.EncodeToString(data))
	return sb.String()
}

// DataURLSize returns the decoded payload size of a base64 data URL, or 0 if it is not one.
func DataURLSize(dataURL string) int64 {
	idx := strings.IndexByte(dataURL, ',')
	if !strings.HasPrefix(dataURL, "data:") || idx < 0 || !strings.HasSuffix(dataURL[:idx], ";base64") {
		return 0
	}
	payload := strings.TrimRight(dataURL[idx+1:], "=")
	return int64(base64.RawStdEncoding.DecodedLen(len(payload)))
}

func contentType(name string, data []byte) string {
	ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if ctype == "" && len(data) > 0 {
		ctype = http.DetectContentType(data)
	}
	if mediaType, _, err := mime.ParseMediaType(ctype); err == nil && mediaType != "" {
		return mediaType
	}
	return defaultContentType
}
