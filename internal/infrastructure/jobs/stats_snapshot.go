package jobs

import (
	"context"
	"log"
	"time"
)

// statsSnapshotter refreshes the cached review queue summary.
type statsSnapshotter interface {
	SnapshotStats(ctx context.Context, ttl time.Duration) error
}

// StatsSnapshotJob periodically snapshots the review queue counters
// into Redis; the admin stats endpoint serves that cache and only falls
// back to the database when no snapshot is available.
type StatsSnapshotJob struct {
	admin    statsSnapshotter
	interval time.Duration
	stop     chan struct{}
}

func NewStatsSnapshotJob(admin statsSnapshotter) *StatsSnapshotJob {
	return &StatsSnapshotJob{
		admin:    admin,
		interval: 1 * time.Minute,
		stop:     make(chan struct{}),
	}
}

func (j *StatsSnapshotJob) Start(ctx context.Context) {
	log.Println("🕐 Starting stats snapshot job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	// Take one snapshot right away so the cache is warm at startup.
	j.snapshot(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Stats snapshot job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Stats snapshot job stopped")
			return
		case <-ticker.C:
			j.snapshot(ctx)
		}
	}
}

func (j *StatsSnapshotJob) Stop() {
	close(j.stop)
}

func (j *StatsSnapshotJob) snapshot(ctx context.Context) {
	// Snapshot outlives two intervals so readers never see a gap.
	if err := j.admin.SnapshotStats(ctx, 2*j.interval+10*time.Second); err != nil {
		log.Printf("❌ Error storing stats snapshot: %v", err)
	}
}
