// Package storage archives raw ingestion batches to object storage so a
// feed run can be replayed or audited after the fact.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"donorops_backend/internal/config"
)

// Archiver persists feed batches as JSON objects.
type Archiver interface {
	ArchiveBatch(ctx context.Context, runID string, fetchedAt time.Time, payload any) (string, error)
}

// MinIOArchiver implements Archiver using MinIO.
type MinIOArchiver struct {
	client *minio.Client
	bucket string
}

// NewMinIOArchiver creates the archive client and ensures the bucket exists.
func NewMinIOArchiver(ctx context.Context, cfg *config.Config) (*MinIOArchiver, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	a := &MinIOArchiver{client: client, bucket: cfg.ArchiveBucket}
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *MinIOArchiver) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
	}
	return nil
}

// ArchiveBatch writes one ingestion batch under ingest/<day>/<runID>.json
// and returns the object key.
func (a *MinIOArchiver) ArchiveBatch(ctx context.Context, runID string, fetchedAt time.Time, payload any) (string, error) {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode batch: %w", err)
	}

	key := fmt.Sprintf("ingest/%s/%s.json", fetchedAt.Format("2006-01-02"), runID)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive batch %s: %w", key, err)
	}
	return key, nil
}
