package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/config"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

// Archiver keeps a JSON snapshot of every generated schedule in object storage.
type Archiver struct {
	client  *minio.Client
	bucket  string
	timeout time.Duration
}

func New(cfg *config.Config) (*Archiver, error) {
	client, err := minio.New(cfg.Archive.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Archive.AccessKey, cfg.Archive.SecretKey, ""),
		Secure: cfg.Archive.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Archiver{
		client:  client,
		bucket:  cfg.Archive.Bucket,
		timeout: time.Duration(cfg.Archive.Timeout) * time.Second,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}

	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Put uploads run and returns the object key it was stored under.
func (a *Archiver) Put(ctx context.Context, run *domain.ScheduleRun) (string, error) {
	body, err := json.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("encode schedule run: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	key := Key(run)
	if _, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	}); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return key, nil
}

// Key is schedules/<week start>/<run id>.json, the date taken in the week's own time zone.
func Key(run *domain.ScheduleRun) string {
	return fmt.Sprintf("schedules/%s/%d.json", run.StagingWeek.Start.Format(time.DateOnly), run.ID)
}
