package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"github.com/harentsoaR/hospital-staff-api/internal/config"
)

var ErrInvalidAvatar = errors.New("invalid avatar")

// AvatarStorage persists an uploaded avatar and returns the reference to
// store on the user record.
type AvatarStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
}

func NewAvatarStorage(cfg config.Upload) (AvatarStorage, error) {
	switch cfg.Driver {
	case "s3":
		if cfg.S3Bucket == "" || cfg.S3Region == "" {
			return nil, errors.New("S3_BUCKET and S3_REGION are required for the s3 upload driver")
		}
		sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.S3Region)})
		if err != nil {
			return nil, fmt.Errorf("aws session: %w", err)
		}
		return &S3AvatarStorage{
			Client:    s3.New(sess),
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			PublicURL: cfg.S3PublicURL,
			MaxBytes:  cfg.MaxBytes,
		}, nil
	case "local", "":
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir %s: %w", cfg.Dir, err)
		}
		return &LocalAvatarStorage{Dir: cfg.Dir, MaxBytes: cfg.MaxBytes}, nil
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.Driver)
	}
}

func checkAvatar(file *multipart.FileHeader, maxBytes int64) error {
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return fmt.Errorf("%w: only images are accepted", ErrInvalidAvatar)
	}
	if maxBytes > 0 && file.Size > maxBytes {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidAvatar, maxBytes)
	}
	return nil
}

func avatarName(original string) string {
	return fmt.Sprintf("%s-%s%s", time.Now().Format("20060102-150405"), uuid.New().String()[:8], strings.ToLower(filepath.Ext(original)))
}

// LocalAvatarStorage writes avatars under Dir and returns the file name.
type LocalAvatarStorage struct {
	Dir      string
	MaxBytes int64
}

func (s *LocalAvatarStorage) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if err := checkAvatar(file, s.MaxBytes); err != nil {
		return "", err
	}
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := avatarName(file.Filename)
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("create avatar file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write avatar file: %w", err)
	}
	return name, ctx.Err()
}

// S3AvatarStorage uploads avatars to a bucket and returns their public URL.
type S3AvatarStorage struct {
	Client    s3iface.S3API
	Bucket    string
	Region    string
	PublicURL string
	MaxBytes  int64
}

func (s *S3AvatarStorage) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if err := checkAvatar(file, s.MaxBytes); err != nil {
		return "", err
	}
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	key := "avatars/" + avatarName(file.Filename)
	_, err = s.Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(file.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	if s.PublicURL != "" {
		return s.PublicURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key), nil
}
