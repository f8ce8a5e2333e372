package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	appconfig "github.com/ikkim/photoshare-backend/config"
	"github.com/ikkim/photoshare-backend/pkg/logger"
)

var ErrObjectNotFound = errors.New("object not found")

// Asset describes an object stored on the image host
type Asset struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Folder    string `json:"folder"`
}

type S3Storage struct {
	client     *s3.Client
	bucket     string
	baseURL    string
	endpoint   string
	rootFolder string
}

func NewS3Storage(cfg *appconfig.S3Config) *S3Storage {
	var awsCfg aws.Config
	var err error

	// static credentials when configured, default chain otherwise
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = config.LoadDefaultConfig(context.TODO(),
			config.WithRegion(cfg.Region),
		)
		if err != nil {
			logger.Warn("Falling back to region-only AWS config", map[string]interface{}{
				"error": err.Error(),
			})
			awsCfg = aws.Config{
				Region: cfg.Region,
			}
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:     client,
		bucket:     cfg.Bucket,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		rootFolder: cfg.RootFolder,
	}
}

// Upload stores data under <root>/<folder>/<uuid><ext>
func (s *S3Storage) Upload(ctx context.Context, folder string, data []byte, contentType string) (*Asset, error) {
	key := objectKey(s.rootFolder, folder, contentType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		logger.Error("Failed to upload object", err, map[string]interface{}{
			"key": key,
		})
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}

	logger.Debug("Object uploaded", map[string]interface{}{
		"key":  key,
		"size": len(data),
	})

	return &Asset{
		PublicID:  key,
		SecureURL: s.publicURL(key),
		Folder:    folder,
	}, nil
}

// Download fetches the object body
func (s *S3Storage) Download(ctx context.Context, publicID string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		logger.Error("Failed to download object", err, map[string]interface{}{
			"key": publicID,
		})
		return nil, fmt.Errorf("failed to download object: %w", err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// Delete removes the object; deleting a missing key is not an error on S3
func (s *S3Storage) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		logger.Error("Failed to delete object", err, map[string]interface{}{
			"key": publicID,
		})
		return fmt.Errorf("failed to delete object: %w", err)
	}

	logger.Debug("Object deleted", map[string]interface{}{
		"key": publicID,
	})
	return nil
}

// PresignGet returns a time limited download URL for a private bucket
func (s *S3Storage) PresignGet(ctx context.Context, publicID string, ttl time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}

func (s *S3Storage) publicURL(key string) string {
	switch {
	case s.baseURL != "":
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	case s.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
	}
}

func objectKey(root, folder, contentType string) string {
	return path.Join(root, folder, uuid.NewString()+extensionFor(contentType))
}
