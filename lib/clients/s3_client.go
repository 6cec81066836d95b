package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"inventory/lib/constants"
	"inventory/lib/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrObjectNotFound is returned when the requested key does not exist
var ErrObjectNotFound = errors.New("object not found")

// S3API is the subset of the SDK client used here, so tests can substitute it
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3ClientInterface defines the interface for S3 operations
type S3ClientInterface interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// S3Client wraps the AWS S3 client with our custom methods
type S3Client struct {
	svc    S3API
	bucket string
}

// NewS3Client creates a client for the bucket described by settings.
// A custom endpoint selects an S3 compatible store; isLocal points at LocalStack.
func NewS3Client(ctx context.Context, isLocal bool, settings *models.S3Config) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(settings.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(settings.AccessKey, settings.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	svc := s3.NewFromConfig(cfg, func(o *s3.Options) {
		switch {
		case isLocal:
			o.BaseEndpoint = aws.String(constants.LOCALSTACK_ENDPOINT)
		case settings.Endpoint != nil && *settings.Endpoint != "":
			o.BaseEndpoint = settings.Endpoint
		}
		o.UsePathStyle = true
	})

	return NewS3ClientWithAPI(svc, settings.Bucket), nil
}

// NewS3ClientWithAPI wraps an existing SDK client
func NewS3ClientWithAPI(svc S3API, bucket string) *S3Client {
	return &S3Client{svc: svc, bucket: bucket}
}

// PutObject uploads body under key
func (client *S3Client) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := client.svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(client.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", client.bucket, key, err)
	}
	return nil
}

// GetObject downloads the object stored under key
func (client *S3Client) GetObject(ctx context.Context, key string) ([]byte, error) {
	output, err := client.svc.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(client.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrObjectNotFound, client.bucket, key)
		}
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", client.bucket, key, err)
	}
	defer output.Body.Close()

	body, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", client.bucket, key, err)
	}
	return body, nil
}
