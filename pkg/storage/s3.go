package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const midiContentType = "audio/midi"

// s3API is the part of the S3 client the sink uses
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Sink uploads generated files to an S3 bucket
type S3Sink struct {
	client  s3API
	bucket  string
	region  string
	prefix  string
	baseURL string
	now     func() time.Time
	newID   func() string
}

// S3Options configures an S3 sink
type S3Options struct {
	Bucket  string
	Region  string
	Prefix  string
	BaseURL string
}

// NewS3Sink loads the default AWS configuration for the region and creates a sink
func NewS3Sink(ctx context.Context, opts S3Options) (*S3Sink, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("%w: S3 bucket is not configured", ErrStorage)
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load AWS config: %v", ErrStorage, err)
	}

	return newS3Sink(s3.NewFromConfig(cfg), opts), nil
}

func newS3Sink(client s3API, opts S3Options) *S3Sink {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
	return &S3Sink{
		client:  client,
		bucket:  opts.Bucket,
		region:  opts.Region,
		prefix:  opts.Prefix,
		baseURL: baseURL,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Name returns "s3"
func (s *S3Sink) Name() string {
	return "s3"
}

// ObjectKey lays out uploads as {prefix}/{year}/{month}/{id}/{name}.mid
func ObjectKey(prefix string, now time.Time, id, name string) string {
	key := fmt.Sprintf("%d/%02d/%s/%s", now.Year(), now.Month(), id, FileName(name))
	if p := strings.Trim(prefix, "/"); p != "" {
		key = p + "/" + key
	}
	return key
}

// Store uploads data under a fresh object key
func (s *S3Sink) Store(ctx context.Context, name string, data []byte) (*Result, error) {
	now := s.now()
	key := ObjectKey(s.prefix, now, s.newID(), name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(midiContentType),
		CacheControl: aws.String("max-age=3600"),
		Metadata: map[string]string{
			"original-filename": FileName(name),
			"upload-timestamp":  now.Format(time.RFC3339),
			"file-type":         "midi",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to upload to S3: %v", ErrStorage, err)
	}

	return &Result{
		Sink:     s.Name(),
		Location: fmt.Sprintf("s3://%s/%s", s.bucket, key),
		Key:      key,
		URL:      fmt.Sprintf("%s/%s", strings.TrimSuffix(s.baseURL, "/"), key),
		Bucket:   s.bucket,
		Region:   s.region,
		Size:     int64(len(data)),
	}, nil
}

// CheckBucketAccess verifies that the bucket is reachable
func (s *S3Sink) CheckBucketAccess(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("%w: cannot access S3 bucket %s: %v", ErrStorage, s.bucket, err)
	}
	return nil
}

// Remove deletes an object uploaded by Store
func (s *S3Sink) Remove(ctx context.Context, stored *Result) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(stored.Key),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete s3://%s/%s: %v", ErrStorage, s.bucket, stored.Key, err)
	}
	return nil
}
