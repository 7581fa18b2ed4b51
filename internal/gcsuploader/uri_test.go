package gcsuploader

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/zenith/internal/domain"
)

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{uri: "gs://bucket/receipts/a.jpg", wantBucket: "bucket", wantObject: "receipts/a.jpg"},
		{uri: "gs://bucket/a.png", wantBucket: "bucket", wantObject: "a.png"},
		{uri: "https://bucket/a.png", wantErr: true},
		{uri: "gs://bucket", wantErr: true},
		{uri: "gs://bucket/", wantErr: true},
		{uri: "gs:///a.png", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseGCSURI(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestExtractFilenameFromGCSURI(t *testing.T) {
	tests := map[string]string{
		"gs://bucket/folder/receipt.jpg": "receipt.jpg",
		"gs://bucket/receipt.png":        "receipt.png",
		"gs://bucket":                    "bucket",
	}
	for in, want := range tests {
		assert.Equal(t, want, ExtractFilenameFromGCSURI(in), in)
	}
}

func TestMIMETypeForName(t *testing.T) {
	tests := map[string]string{
		"a.JPG":  "image/jpeg",
		"a.jpeg": "image/jpeg",
		"a.png":  "image/png",
		"a.webp": "image/webp",
		"a.heic": "image/heic",
		"a":      "image/jpeg",
		"a.pdf":  "image/jpeg",
	}
	for in, want := range tests {
		assert.Equal(t, want, MIMETypeForName(in), in)
	}
}

func TestObjectName(t *testing.T) {
	s := &GCSReceiptStore{
		prefix: DefaultPrefix,
		now:    func() time.Time { return time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC) },
	}
	name := s.objectName("image/png")
	assert.True(t, strings.HasPrefix(name, "receipts/2024/03/09/"), name)
	assert.True(t, strings.HasSuffix(name, ".png"), name)
}
