package archive

import (
	"testing"
	"time"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/config"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

func TestKey(t *testing.T) {
	run := &domain.ScheduleRun{
		ID:          42,
		StagingWeek: domain.NewStagingWeek(time.Date(2024, 9, 9, 15, 30, 0, 0, time.UTC), time.UTC),
	}

	if got, want := Key(run), "schedules/2024-09-09/42.json"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNew(t *testing.T) {
	cfg := &config.Config{}
	cfg.Archive.Endpoint = "localhost:9000"
	cfg.Archive.Bucket = "ulc-schedules"
	cfg.Archive.Timeout = 5

	archiver, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if archiver.bucket != "ulc-schedules" || archiver.timeout != 5*time.Second {
		t.Fatalf("unexpected archiver %+v", archiver)
	}
}
