// Package s3 provides an Amazon S3 (or compatible) implementation of
// content.ContentStore.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/marmos91/docvault/pkg/content"
)

// S3ContentStore implements ContentStore on top of an S3 bucket.
//
// Works with Amazon S3 and S3-compatible services (MinIO, Localstack) via a
// custom endpoint on the client. Object keys are keyPrefix + content
// identifier, so multiple stores can share a bucket under distinct prefixes.
//
// Thread Safety:
// The S3 client is safe for concurrent use. Content addressing makes
// concurrent puts of the same bytes idempotent.
type S3ContentStore struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// Interface compliance check.
var _ content.ContentStore = (*S3ContentStore)(nil)

// NewS3ContentStore creates a content store over the given bucket.
//
// The client is built by the caller (see pkg/config) so that credentials,
// region, and custom endpoints are configured in one place.
func NewS3ContentStore(client *s3.Client, bucket, keyPrefix string) (*S3ContentStore, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 content store: client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3 content store: bucket is required")
	}
	return &S3ContentStore{
		client:    client,
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}, nil
}

// objectKey returns the S3 object key for a content identifier.
func (s *S3ContentStore) objectKey(id content.ContentID) string {
	return s.keyPrefix + string(id)
}

// Put stores data under its content-derived identifier.
func (s *S3ContentStore) Put(ctx context.Context, data []byte) (content.ContentID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := content.IDFor(data)

	// Skip the upload if the object already exists; same key means same
	// bytes under content addressing.
	exists, err := s.Has(ctx, id)
	if err != nil {
		return "", err
	}
	if exists {
		return id, nil
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(id)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object to S3: %w", err)
	}
	return id, nil
}

// Get returns the bytes stored under id.
func (s *S3ContentStore) Get(ctx context.Context, id content.ContentID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(id)),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
		}
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return data, nil
}

// Has reports whether content exists for id.
func (s *S3ContentStore) Has(ctx context.Context, id content.ContentID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(id)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object in S3: %w", err)
	}
	return true, nil
}

// Delete removes the content stored under id. S3 deletes are idempotent:
// deleting a missing key succeeds.
func (s *S3ContentStore) Delete(ctx context.Context, id content.ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(id)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}
	return nil
}

// Close is a no-op; the S3 client has no resources to release.
func (s *S3ContentStore) Close() error {
	return nil
}
