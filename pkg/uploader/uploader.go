package uploader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/craftfolio/craftfolio-api/pkg/apperr"
)

// ErrUploadFailed is the single client-facing failure for image ingestion.
// The underlying cause goes to the logs, never to the response body.
var ErrUploadFailed = apperr.New(apperr.Internal, "image upload failed")

// Uploader re-hosts user-supplied image URLs: it fetches the raw image and
// stores it in the configured bucket, returning a stable public URL.
// The contract the rest of the app relies on is Upload(url) -> url.
type Uploader interface {
	Upload(ctx context.Context, rawURL, folder string) (string, error)
}

// GCSUploader stores images in a Google Cloud Storage bucket.
type GCSUploader struct {
	client  *storage.Client
	bucket  string
	httpc   *http.Client
	timeout time.Duration
}

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

func NewGCSUploader(client *storage.Client, bucket string, timeout time.Duration) *GCSUploader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GCSUploader{
		client:  client,
		bucket:  bucket,
		httpc:   &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Upload fetches rawURL and writes it to bucket/<folder>/<uuid>, returning
// the public URL of the stored object.
func (u *GCSUploader) Upload(ctx context.Context, rawURL, folder string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, ErrUploadFailed.Message, err)
	}
	resp, err := u.httpc.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, ErrUploadFailed.Message, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", apperr.Wrap(apperr.Internal, ErrUploadFailed.Message, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectPath := folder + "/" + uuid.NewString()

	wc := u.client.Bucket(u.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // small objects, skip chunking
	if _, err := io.Copy(wc, resp.Body); err != nil {
		_ = wc.Close()
		return "", apperr.Wrap(apperr.Internal, ErrUploadFailed.Message, err)
	}
	if err := wc.Close(); err != nil {
		return "", apperr.Wrap(apperr.Internal, ErrUploadFailed.Message, err)
	}
	return PublicURL(u.bucket, objectPath), nil
}

// PublicURL builds a public URL for an object (assuming public read access)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
