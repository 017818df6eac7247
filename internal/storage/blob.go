package storage

import "io"

// BlobStore holds uploaded media and profile images. Keys are
// slash-separated paths ("media/<business>/<file>").
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}
