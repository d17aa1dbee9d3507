package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deleted []string
	putErr  error
	headErr error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, params)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestFileName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"melody_generated", "melody_generated.mid"},
		{"song.mid", "song.mid"},
		{"SONG.MID", "SONG.MID"},
		{"../escape", "escape.mid"},
		{"  spaced  ", "spaced.mid"},
		{"", "melody.mid"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, FileName(tt.in))
		})
	}
}

func TestLocalSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	sink := NewLocalSink(dir)

	result, err := sink.Store(context.Background(), "melody_generated", []byte("MThd"))
	require.NoError(t, err)

	assert.Equal(t, "local", result.Sink)
	assert.Equal(t, filepath.Join(dir, "melody_generated.mid"), result.Location)
	assert.Equal(t, int64(4), result.Size)

	data, err := os.ReadFile(result.Location)
	require.NoError(t, err)
	assert.Equal(t, "MThd", string(data))
}

func TestLocalSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalSink(t.TempDir()).Store(ctx, "x", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "melodies/2026/03/abc/tune.mid", ObjectKey("melodies", now, "abc", "tune"))
	assert.Equal(t, "melodies/2026/03/abc/tune.mid", ObjectKey("/melodies/", now, "abc", "tune.mid"))
	assert.Equal(t, "2026/03/abc/tune.mid", ObjectKey("", now, "abc", "tune"))
}

func TestS3Sink_Store(t *testing.T) {
	client := &fakeS3{}
	sink := newS3Sink(client, S3Options{Bucket: "test-bucket", Region: "us-west-2", Prefix: "melodies", BaseURL: "https://cdn.test.com/"})
	sink.now = func() time.Time { return time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC) }
	sink.newID = func() string { return "run-1" }

	result, err := sink.Store(context.Background(), "melody_generated", []byte{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, "melodies/2026/10/run-1/melody_generated.mid", result.Key)
	assert.Equal(t, "https://cdn.test.com/melodies/2026/10/run-1/melody_generated.mid", result.URL)
	assert.Equal(t, "s3://test-bucket/melodies/2026/10/run-1/melody_generated.mid", result.Location)
	assert.Equal(t, "us-west-2", result.Region)
	assert.Equal(t, int64(3), result.Size)

	require.Len(t, client.puts, 1)
	put := client.puts[0]
	assert.Equal(t, "test-bucket", aws.ToString(put.Bucket))
	assert.Equal(t, "audio/midi", aws.ToString(put.ContentType))
	assert.Equal(t, "midi", put.Metadata["file-type"])
	assert.Equal(t, []byte{1, 2, 3}, client.bodies[0])
}

func TestS3Sink_DefaultBaseURL(t *testing.T) {
	sink := newS3Sink(&fakeS3{}, S3Options{Bucket: "b", Region: "eu-west-1"})
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", sink.baseURL)
}

func TestS3Sink_Errors(t *testing.T) {
	client := &fakeS3{putErr: errors.New("access denied"), headErr: errors.New("no such bucket")}
	sink := newS3Sink(client, S3Options{Bucket: "b", Region: "us-east-1"})

	_, err := sink.Store(context.Background(), "x", []byte{0})
	assert.ErrorIs(t, err, ErrStorage)
	assert.Contains(t, err.Error(), "access denied")

	err = sink.CheckBucketAccess(context.Background())
	assert.ErrorIs(t, err, ErrStorage)
}

func TestNewS3Sink_RequiresBucket(t *testing.T) {
	_, err := NewS3Sink(context.Background(), S3Options{Region: "us-east-1"})
	assert.ErrorIs(t, err, ErrStorage)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	local := NewLocalSink(t.TempDir())
	stored, err := local.Store(ctx, "gone", []byte{1})
	require.NoError(t, err)
	require.NoError(t, local.Remove(ctx, stored))
	_, statErr := os.Stat(stored.Location)
	assert.True(t, os.IsNotExist(statErr))
	assert.NoError(t, local.Remove(ctx, stored), "removing twice is fine")

	client := &fakeS3{}
	sink := newS3Sink(client, S3Options{Bucket: "b", Region: "us-east-1"})
	uploaded, err := sink.Store(ctx, "gone", []byte{1})
	require.NoError(t, err)
	require.NoError(t, sink.Remove(ctx, uploaded))
	assert.Equal(t, []string{uploaded.Key}, client.deleted)
}
