// Package backup moves exported settings documents to and from their
// destination: a local file (gzip-compressed when the name ends in .gz) or
// an object in an S3-compatible bucket addressed as s3://bucket/key.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

var ErrInvalidLocation = errors.New("invalid backup location")

// Destination stores one settings document.
type Destination interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
	String() string
}

// Open resolves location to a Destination.
func Open(ctx context.Context, location string, opts S3Options) (Destination, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidLocation)
	}

	if rest, ok := strings.CutPrefix(location, "s3://"); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return nil, fmt.Errorf("%w: %q must look like s3://bucket/key", ErrInvalidLocation, location)
		}
		return NewS3(ctx, bucket, key, opts)
	}

	return NewFile(location), nil
}

func isCompressed(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".gz")
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip open: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip read: %w", err)
	}
	return out, nil
}
