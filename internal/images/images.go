// Package images stores product images in object storage. Upload and
// transcoding policy live with the storage service; this package only moves
// bytes and hands back stable references.
package images

import (
	"context"
	"io"
)

// Upload is the stored result for one image.
type Upload struct {
	URL       string
	Thumbnail string
	ID        string
}

// Store writes product images and returns their references.
type Store interface {
	Put(ctx context.Context, reader io.Reader, size int64, contentType string) (Upload, error)
}
