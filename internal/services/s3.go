package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
)

const maxAvatarSize = 5 * 1024 * 1024

var (
	ErrInvalidImageType = errors.New("invalid image type")
	ErrImageTooLarge    = errors.New("image too large")
)

type S3Service struct {
	client     s3iface.S3API
	bucketName string
	region     string
}

func NewS3Service(region, bucketName, accessKey, secretKey string) (*S3Service, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return newS3Service(s3.New(sess), region, bucketName), nil
}

func newS3Service(client s3iface.S3API, region, bucketName string) *S3Service {
	return &S3Service{client: client, bucketName: bucketName, region: region}
}

type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// AvatarUpload describes one image received from a multipart form.
type AvatarUpload struct {
	Body        io.ReadSeeker
	FileName    string
	ContentType string
	Size        int64
}

// UploadAvatar stores an avatar under users/avatars/<userID>/.
func (s *S3Service) UploadAvatar(ctx context.Context, userID string, upload AvatarUpload) (*UploadResult, error) {
	contentType := upload.ContentType
	if contentType == "" {
		contentType = contentTypeFromExtension(upload.FileName)
	}
	if !isValidImageType(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidImageType, contentType)
	}
	if upload.Size > maxAvatarSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, upload.Size, maxAvatarSize)
	}

	key := fmt.Sprintf("users/avatars/%s/%s%s", userID, uuid.NewString(), strings.ToLower(filepath.Ext(upload.FileName)))

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucketName),
		Key:          aws.String(key),
		Body:         upload.Body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=31536000"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key),
		FileName:    upload.FileName,
		ContentType: contentType,
		Size:        upload.Size,
	}, nil
}

func (s *S3Service) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	return err
}

// KeyFromURL returns the object key of a URL produced by UploadAvatar, or
// "" when the URL points elsewhere.
func (s *S3Service) KeyFromURL(url string) string {
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucketName, s.region)
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

func isValidImageType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

func contentTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
