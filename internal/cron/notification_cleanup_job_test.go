package cron

import (
	"context"
	"testing"
	"time"
)

type fakePruner struct {
	cutoff  time.Time
	deleted int64
}

func (f *fakePruner) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, nil
}

func TestNotificationCleanupUsesRetentionWindow(t *testing.T) {
	pruner := &fakePruner{deleted: 7}
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:        testLogger(),
		Notifications: pruner,
		RetentionDays: 14,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}

	before := time.Now().UTC()
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := before.Add(-14 * 24 * time.Hour)
	if pruner.cutoff.Before(want.Add(-time.Minute)) || pruner.cutoff.After(want.Add(time.Minute)) {
		t.Fatalf("cutoff %s not within a minute of %s", pruner.cutoff, want)
	}
}

func TestNotificationCleanupDefaultsRetention(t *testing.T) {
	pruner := &fakePruner{}
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:        testLogger(),
		Notifications: pruner,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	cleanup, ok := job.(*notificationCleanupJob)
	if !ok {
		t.Fatalf("unexpected job type %T", job)
	}
	if cleanup.retention != defaultNotificationRetentionDays {
		t.Fatalf("expected default retention, got %d", cleanup.retention)
	}
}
