// Package posters stores uploaded poster images in MinIO and returns the
// public URL recorded on a musical.
package posters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"musical-catalog/config"
	"musical-catalog/internal/domain/apperr"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// sniffLen is how much of the body is read to detect the content type.
const sniffLen = 3072

type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type Uploader struct {
	client    objectStore
	bucket    string
	publicURL string
	maxSize   int64
	now       func() time.Time
}

func New(cfg config.MinIO, maxSize int64) (*Uploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return newUploader(client, cfg, maxSize), nil
}

func newUploader(client objectStore, cfg config.MinIO, maxSize int64) *Uploader {
	public := cfg.PublicURL
	if public == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		public = scheme + "://" + cfg.Endpoint
	}
	return &Uploader{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(public, "/"),
		maxSize:   maxSize,
		now:       time.Now,
	}
}

// EnsureBucket creates the poster bucket if it does not exist yet.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	ok, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", u.bucket, err)
	}
	if ok {
		return nil
	}
	if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %q: %w", u.bucket, err)
	}
	return nil
}

// Upload stores an image and returns its public URL. Non-image bodies and
// bodies over the size limit are rejected before anything is written.
func (u *Uploader) Upload(ctx context.Context, filename string, body io.Reader, size int64) (string, error) {
	if size <= 0 {
		return "", invalidPoster("is empty")
	}
	if u.maxSize > 0 && size > u.maxSize {
		return "", invalidPoster(fmt.Sprintf("cannot exceed %d bytes", u.maxSize))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", apperr.Internal("read poster", err)
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", invalidPoster("must be an image")
	}

	now := u.now()
	object := objectName(now, mt.Extension())

	_, err = u.client.PutObject(ctx, u.bucket, object, io.MultiReader(bytes.NewReader(head), body), size,
		minio.PutObjectOptions{
			ContentType: mt.String(),
			UserMetadata: map[string]string{
				"original-filename": filename,
				"uploaded-at":       now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", apperr.Internal("upload poster", err)
	}

	return fmt.Sprintf("%s/%s/%s", u.publicURL, u.bucket, object), nil
}

func objectName(at time.Time, ext string) string {
	return fmt.Sprintf("posters/%d/%02d/%s%s", at.Year(), at.Month(), uuid.NewString(), ext)
}

func invalidPoster(msg string) error {
	return apperr.Validation("invalid poster", map[string]string{"poster": msg})
}
