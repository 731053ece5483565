package s3

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*awss3.PutObjectOutput), args.Error(1)
}

func newTestUploader(t *testing.T, client PutObjectAPI) *Uploader {
	t.Helper()
	u, err := NewUploader(client, "reports-bucket", "/social/")
	require.NoError(t, err)
	u.now = func() time.Time { return time.Date(2025, 4, 2, 23, 0, 0, 0, time.UTC) }
	u.newID = func() string { return "0b7e6f3c-1111-4222-8333-944455556666" }
	return u
}

func TestUploader_Key(t *testing.T) {
	u := newTestUploader(t, new(mockS3))
	assert.Equal(t, "social/2025-04-02/0b7e6f3c-1111-4222-8333-944455556666.xlsx", u.Key())
}

func TestUploader_Upload(t *testing.T) {
	client := new(mockS3)
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *awss3.PutObjectInput) bool {
		return *in.Bucket == "reports-bucket" &&
			*in.Key == "social/2025-04-02/0b7e6f3c-1111-4222-8333-944455556666.xlsx" &&
			*in.ContentType == "application/octet-stream"
	})).Return(&awss3.PutObjectOutput{}, nil)

	location, err := newTestUploader(t, client).Upload(context.Background(), strings.NewReader("xlsx"), "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "s3://reports-bucket/social/2025-04-02/0b7e6f3c-1111-4222-8333-944455556666.xlsx", location)
	client.AssertExpectations(t)
}

func TestUploader_UploadError(t *testing.T) {
	client := new(mockS3)
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := newTestUploader(t, client).Upload(context.Background(), strings.NewReader("xlsx"), "application/octet-stream")
	assert.ErrorContains(t, err, "access denied")
}

func TestNewUploader_RequiresBucket(t *testing.T) {
	_, err := NewUploader(new(mockS3), "", "prefix")
	assert.Error(t, err)
}
