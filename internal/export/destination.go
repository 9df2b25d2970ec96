package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const contentTypeNDJSON = "application/x-ndjson"

// Destination receives a finished export.
type Destination interface {
	Write(ctx context.Context, data []byte) error
}

// WriterDestination copies the export to an io.Writer such as stdout.
type WriterDestination struct {
	W io.Writer
}

func (d WriterDestination) Write(ctx context.Context, data []byte) error {
	_, err := d.W.Write(data)
	return err
}

// FileDestination writes the export to a local file, replacing it.
type FileDestination struct {
	Path string
}

func (d FileDestination) Write(ctx context.Context, data []byte) error {
	if err := os.WriteFile(d.Path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", d.Path, err)
	}
	return nil
}

// S3Destination writes an export to an S3-compatible bucket. ContentType
// defaults to JSONL.
type S3Destination struct {
	ContentType string

	client *s3.Client
	bucket string
	key    string
}

// NewS3Destination creates an S3 destination. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar).
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 bucket and key are required")
	}
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Destination{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: bucket,
		key:    key,
	}, nil
}

// Write uploads data to S3 as the configured object key.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	contentType := d.ContentType
	if contentType == "" {
		contentType = contentTypeNDJSON
	}
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}
