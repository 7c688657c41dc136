package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCSProvider archives pages to a Google Cloud Storage bucket.
// Authentication uses Application Default Credentials.
type GCSProvider struct {
	client *storage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewGCSProvider builds the client and verifies the bucket is reachable
// so misconfiguration surfaces at startup rather than mid-run.
func NewGCSProvider(ctx context.Context, bucket, prefix string, logger *zap.Logger) (*GCSProvider, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("Failed to close GCS client after bucket check failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("get GCS bucket %q attributes: %w", bucket, err)
	}
	return &GCSProvider{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}, nil
}

// SavePage uploads the body as one object.
func (p *GCSProvider) SavePage(ctx context.Context, rawURL string, body []byte) error {
	name := objectName(rawURL, time.Now())
	if p.prefix != "" {
		name = p.prefix + "/" + name
	}

	wc := p.client.Bucket(p.bucket).Object(name).NewWriter(ctx)
	if _, err := wc.Write(body); err != nil {
		if closeErr := wc.Close(); closeErr != nil {
			p.logger.Warn("Failed to close GCS writer after write failure", zap.Error(closeErr))
		}
		return fmt.Errorf("write GCS object %s: %w", name, err)
	}
	// Close finalizes the upload.
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close GCS writer for object %s: %w", name, err)
	}
	return nil
}

func (p *GCSProvider) Close() error { return p.client.Close() }
