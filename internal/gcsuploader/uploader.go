// Package gcsuploader stores receipt images in Google Cloud Storage and reads
// them back for extraction.
package gcsuploader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/dvloznov/zenith/internal/ai"
)

// DefaultPrefix is the object path prefix receipts are written under.
const DefaultPrefix = "receipts"

// ReceiptStore provides an interface for receipt image storage.
type ReceiptStore interface {
	// UploadReceipt stores image bytes and returns their gs:// URI.
	UploadReceipt(ctx context.Context, data []byte, mimeType string) (string, error)

	// FetchReceipt downloads a receipt image from a gs:// URI.
	FetchReceipt(ctx context.Context, gcsURI string) (ai.ReceiptImage, error)
}

// GCSReceiptStore is the Cloud Storage implementation of ReceiptStore.
type GCSReceiptStore struct {
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewGCSReceiptStore creates a storage client. It assumes Application Default
// Credentials are configured (gcloud auth application-default login).
func NewGCSReceiptStore(ctx context.Context, bucket string) (*GCSReceiptStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("NewGCSReceiptStore: bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSReceiptStore: create storage client: %w", err)
	}
	return &GCSReceiptStore{
		client: client,
		bucket: bucket,
		prefix: DefaultPrefix,
		now:    time.Now,
	}, nil
}

// Close closes the storage client.
func (s *GCSReceiptStore) Close() error {
	return s.client.Close()
}

// objectName builds receipts/YYYY/MM/DD/<uuid><ext>.
func (s *GCSReceiptStore) objectName(mimeType string) string {
	return path.Join(s.prefix, s.now().UTC().Format("2006/01/02"), uuid.NewString()+extensionForMIME(mimeType))
}

// UploadReceipt implements ReceiptStore.
func (s *GCSReceiptStore) UploadReceipt(ctx context.Context, data []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	name := s.objectName(mimeType)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = mimeType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("UploadReceipt: write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("UploadReceipt: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, name), nil
}

// UploadFile uploads a local receipt image and returns its gs:// URI.
func (s *GCSReceiptStore) UploadFile(ctx context.Context, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("UploadFile: read %q: %w", filePath, err)
	}
	return s.UploadReceipt(ctx, data, MIMETypeForName(filepath.Base(filePath)))
}

// FetchReceipt implements ReceiptStore.
func (s *GCSReceiptStore) FetchReceipt(ctx context.Context, gcsURI string) (ai.ReceiptImage, error) {
	bucket, object, err := ParseGCSURI(gcsURI)
	if err != nil {
		return ai.ReceiptImage{}, fmt.Errorf("FetchReceipt: %w", err)
	}

	rc, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return ai.ReceiptImage{}, fmt.Errorf("FetchReceipt: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return ai.ReceiptImage{}, fmt.Errorf("FetchReceipt: reading bytes: %w", err)
	}

	mimeType := rc.Attrs.ContentType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = MIMETypeForName(ExtractFilenameFromGCSURI(gcsURI))
	}
	return ai.ReceiptImage{Data: data, MIMEType: mimeType}, nil
}

var _ ReceiptStore = (*GCSReceiptStore)(nil)
