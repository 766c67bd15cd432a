package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/zuzi-store/internal/config"
)

func TestStorageServiceLocalFallback(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewStorageService(&config.Config{Server: config.ServerConfig{UploadDir: dir}},
		newFixedClock(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.False(t, svc.UsesS3())

	key := svc.generateKey("Photo.JPG")
	assert.Regexp(t, `^products/20240310_[0-9a-f-]{8}\.jpg$`, key)

	result, err := svc.uploadToLocal([]byte("data"), key, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+key, result.URL)
	assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(key)))

	require.NoError(t, svc.DeleteFile(context.Background(), key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is not an error.
	assert.NoError(t, svc.DeleteFile(context.Background(), key))
}

func TestStorageServiceRejectsForeignKeys(t *testing.T) {
	svc, err := NewStorageService(&config.Config{Server: config.ServerConfig{UploadDir: t.TempDir()}}, nil)
	require.NoError(t, err)

	for _, key := range []string{"", "secrets/key.pem", "products/../../etc/passwd"} {
		assert.ErrorIs(t, svc.DeleteFile(context.Background(), key), ErrInvalidFileKey, key)
	}
}

func TestStorageServiceS3URL(t *testing.T) {
	svc := &StorageService{awsConfig: config.AWSConfig{S3Bucket: "bucket", Region: "eu-west-1"}}
	assert.Equal(t, "https://bucket.s3.eu-west-1.amazonaws.com/products/a.png", svc.getS3URL("products/a.png"))

	svc.awsConfig.CloudFrontURL = "https://cdn.example.com/"
	assert.Equal(t, "https://cdn.example.com/products/a.png", svc.getS3URL("products/a.png"))
}

func TestStorageServiceS3Client(t *testing.T) {
	svc, err := NewStorageService(&config.Config{AWS: config.AWSConfig{
		Region: "us-east-1", AccessKeyID: "AKIA", SecretAccessKey: "secret", S3Bucket: "bucket",
	}}, nil)
	require.NoError(t, err)
	assert.True(t, svc.UsesS3())
}
