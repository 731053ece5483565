// Package s3 uploads exported workbooks to an S3 bucket.
package s3

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultRegion = "us-east-1"

// PutObjectAPI is the part of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// LoadConfig resolves AWS credentials from the shared config, optionally for a
// named profile.
func LoadConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithDefaultRegion(DefaultRegion)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		return aws.Config{}, fmt.Errorf("invalid AWS credentials for profile %q: %w", profile, err)
	}
	return awsCfg, nil
}

type Uploader struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
	newID  func() string
}

func NewUploader(client PutObjectAPI, bucket, prefix string) (*Uploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
		newID:  uuid.NewString,
	}, nil
}

// NewUploaderFromConfig builds the S3 client from the shared AWS config.
func NewUploaderFromConfig(ctx context.Context, bucket, prefix, profile, region string) (*Uploader, error) {
	awsCfg, err := LoadConfig(ctx, profile, region)
	if err != nil {
		return nil, err
	}
	return NewUploader(awss3.NewFromConfig(awsCfg), bucket, prefix)
}

// Key returns <prefix>/<yyyy-mm-dd>/<uuid>.xlsx.
func (u *Uploader) Key() string {
	return path.Join(u.prefix, u.now().UTC().Format(time.DateOnly), u.newID()+".xlsx")
}

// Upload stores body under a fresh key and returns its s3:// location.
func (u *Uploader) Upload(ctx context.Context, body io.Reader, contentType string) (string, error) {
	key := u.Key()
	_, err := u.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", u.bucket, key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", u.bucket, key)
	zerolog.Ctx(ctx).Info().Str("location", location).Msg("workbook uploaded")
	return location, nil
}
