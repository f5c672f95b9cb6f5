package service

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Media is an image or audio payload resolved from a URI.
type Media struct {
	Data     []byte
	FileName string
	MimeType string
}

// MediaLoader resolves a URI handed to TranscribeAudio or ExtractTextFromImage.
type MediaLoader interface {
	Load(ctx context.Context, uri string) (Media, error)
}

// FileLoader reads local paths and file:// URIs.
type FileLoader struct{}

var _ MediaLoader = FileLoader{}

// Load reads the file named by uri. The MIME type is guessed from the extension.
func (FileLoader) Load(ctx context.Context, uri string) (Media, error) {
	if err := ctx.Err(); err != nil {
		return Media{}, err
	}
	path := strings.TrimPrefix(uri, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return Media{}, err
	}
	name := filepath.Base(path)
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return Media{Data: data, FileName: name, MimeType: mimeType}, nil
}
