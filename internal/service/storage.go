package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipebox/config"
)

// ErrObjectExists is returned by Upload without Upsert when the path is taken
var ErrObjectExists = errors.New("object already exists")

// UploadOptions mirrors the knobs the avatar upload needs
type UploadOptions struct {
	Upsert       bool
	ContentType  string
	CacheControl string
}

// ObjectStore is a bucket of public objects addressed by path
type ObjectStore interface {
	Upload(ctx context.Context, path string, body io.Reader, opts UploadOptions) error
	// List returns the object names directly under prefix
	List(ctx context.Context, prefix string) ([]string, error)
	Remove(ctx context.Context, paths []string) error
	PublicURL(path string) string
}

// S3ObjectStore keeps objects in a single S3 bucket
type S3ObjectStore struct {
	s3 *config.S3Config
}

func NewS3ObjectStore(s3Config *config.S3Config) *S3ObjectStore {
	return &S3ObjectStore{s3: s3Config}
}

func (s *S3ObjectStore) Upload(ctx context.Context, path string, body io.Reader, opts UploadOptions) error {
	if !opts.Upsert {
		_, err := s.s3.Client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.s3.BucketName),
			Key:    aws.String(path),
		})
		if err == nil {
			return ErrObjectExists
		}
		var notFound *s3types.NotFound
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to check object %s: %w", path, err)
		}
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.s3.BucketName),
		Key:    aws.String(path),
		Body:   body,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.CacheControl != "" {
		input.CacheControl = aws.String(opts.CacheControl)
	}

	if _, err := s.s3.Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return nil
}

func (s *S3ObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.TrimSuffix(prefix, "/") + "/"

	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.s3.Client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.s3.BucketName),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			names = append(names, strings.TrimPrefix(aws.ToString(obj.Key), prefix))
		}
	}
	return names, nil
}

// Remove deletes every path concurrently; the first failure is returned
func (s *S3ObjectStore) Remove(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			_, err := s.s3.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.s3.BucketName),
				Key:    aws.String(path),
			})
			if err != nil {
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *S3ObjectStore) PublicURL(path string) string {
	return s.s3.PublicURL(path)
}
