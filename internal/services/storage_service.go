// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/zuzi-store/internal/config"
)

const (
	productImageFolder  = "products"
	maxProductImageSize = 10 * 1024 * 1024
	localUploadPrefix   = "/uploads"
)

var (
	ErrFileTooLarge   = errors.New("file exceeds the maximum allowed size")
	ErrFileTypeDenied = errors.New("file type is not allowed")
	ErrInvalidImage   = errors.New("invalid image file")
	ErrInvalidFileKey = errors.New("invalid file key")
	allowedImageExts  = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	allowedImageMIMEs = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
)

// StorageService keeps product images in S3 when credentials are configured
// and on the local disk otherwise.
type StorageService struct {
	s3Client  *s3.S3
	awsConfig config.AWSConfig
	uploadDir string
	clock     Clock
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

func NewStorageService(cfg *config.Config, clock Clock) (*StorageService, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	svc := &StorageService{
		awsConfig: cfg.AWS,
		uploadDir: cfg.Server.UploadDir,
		clock:     clock,
	}

	if cfg.AWS.AccessKeyID == "" {
		return svc, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	svc.s3Client = s3.New(sess)
	return svc, nil
}

func (s *StorageService) UsesS3() bool {
	return s.s3Client != nil
}

// UploadProductImage validates an uploaded image and stores it under the
// products folder.
func (s *StorageService) UploadProductImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if header.Size > maxProductImageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, header.Size)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !contains(allowedImageExts, ext) {
		return nil, fmt.Errorf("%w: %s", ErrFileTypeDenied, ext)
	}

	fileBytes, err := io.ReadAll(io.LimitReader(file, maxProductImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(fileBytes) > maxProductImageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(fileBytes))
	}

	contentType := http.DetectContentType(fileBytes)
	if !contains(allowedImageMIMEs, contentType) {
		return nil, ErrInvalidImage
	}

	key := s.generateKey(header.Filename)
	if s.s3Client != nil {
		return s.uploadToS3(ctx, fileBytes, key, contentType)
	}
	return s.uploadToLocal(fileBytes, key, contentType)
}

func (s *StorageService) uploadToS3(ctx context.Context, fileBytes []byte, key, contentType string) (*UploadResult, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.awsConfig.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		URL:      s.getS3URL(key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(fileBytes []byte, key, contentType string) (*UploadResult, error) {
	target := filepath.Join(s.uploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(target, fileBytes, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &UploadResult{
		URL:      path.Join(localUploadPrefix, key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) DeleteFile(ctx context.Context, key string) error {
	if !strings.HasPrefix(key, productImageFolder+"/") || strings.Contains(key, "..") {
		return ErrInvalidFileKey
	}

	if s.s3Client == nil {
		err := os.Remove(filepath.Join(s.uploadDir, filepath.FromSlash(key)))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete file: %w", err)
		}
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.awsConfig.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	logrus.WithField("key", key).Info("Stored file deleted")
	return nil
}

func (s *StorageService) generateKey(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	timestamp := s.clock.Now().UTC().Format("20060102")
	return fmt.Sprintf("%s/%s_%s%s", productImageFolder, timestamp, uuid.NewString()[:8], ext)
}

func (s *StorageService) getS3URL(key string) string {
	if s.awsConfig.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.awsConfig.CloudFrontURL, "/"), key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.awsConfig.S3Bucket, s.awsConfig.Region, key)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
