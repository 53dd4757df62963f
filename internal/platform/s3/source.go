package s3

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Getter reads one object. *Client satisfies it.
type Getter interface {
	GetObject(ctx context.Context, bucketName, key string) ([]byte, error)
}

// Location is a parsed s3://bucket/key URI.
type Location struct {
	Bucket string
	Key    string
}

// IsURI reports whether ref uses the s3 scheme.
func IsURI(ref string) bool {
	return strings.HasPrefix(ref, "s3://")
}

// ParseURI splits an s3://bucket/key URI.
func ParseURI(ref string) (Location, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return Location{}, fmt.Errorf("invalid s3 uri %q: %w", ref, err)
	}
	if u.Scheme != "s3" {
		return Location{}, fmt.Errorf("invalid s3 uri %q: scheme must be s3", ref)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return Location{}, fmt.Errorf("invalid s3 uri %q: want s3://bucket/key", ref)
	}
	return Location{Bucket: u.Host, Key: key}, nil
}

// Source loads documents from local paths or S3.
type Source struct {
	// NewGetter is called lazily the first time an s3:// reference is read.
	NewGetter func(ctx context.Context) (Getter, error)

	getter Getter
}

// Read returns the content behind ref.
func (s *Source) Read(ctx context.Context, ref string) ([]byte, error) {
	if !IsURI(ref) {
		// #nosec G304
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ref, err)
		}
		return data, nil
	}

	loc, err := ParseURI(ref)
	if err != nil {
		return nil, err
	}
	if s.getter == nil {
		if s.NewGetter == nil {
			return nil, fmt.Errorf("cannot read %s: no S3 client configured", ref)
		}
		g, err := s.NewGetter(ctx)
		if err != nil {
			return nil, err
		}
		s.getter = g
	}
	return s.getter.GetObject(ctx, loc.Bucket, loc.Key)
}

// NewSource returns a Source whose S3 client is built from static credentials
// on first use.
func NewSource(region, accessKeyID, secretAccessKey string) *Source {
	return &Source{
		NewGetter: func(ctx context.Context) (Getter, error) {
			c, err := NewClient(ctx, region, accessKeyID, secretAccessKey)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}
}
