// Package media resolves profile photo object keys into displayable URLs.
// Match records denormalize the result so clients render without an extra
// lookup.
package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

const defaultSignedURLTTL = 24 * time.Hour

type Resolver struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

func NewResolver(client *minio.Client, bucket string, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = defaultSignedURLTTL
	}
	return &Resolver{
		client: client,
		bucket: strings.TrimSpace(bucket),
		ttl:    ttl,
	}
}

// ResolveDisplayPhoto presigns a GET for the photo key. Without a configured
// client the raw key passes through, which keeps matching alive when object
// storage is down or absent in a deployment.
func (r *Resolver) ResolveDisplayPhoto(ctx context.Context, photoKey string) (string, error) {
	photoKey = strings.TrimSpace(photoKey)
	if photoKey == "" {
		return "", nil
	}
	if r == nil || r.client == nil || r.bucket == "" {
		return photoKey, nil
	}

	presigned, err := r.client.PresignedGetObject(ctx, r.bucket, photoKey, r.ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign display photo: %w", err)
	}
	return presigned.String(), nil
}
