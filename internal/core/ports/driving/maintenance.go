package driving

import (
	"context"
	"time"
)

// MaintenanceService runs retention sweeps and database backups.
type MaintenanceService interface {
	// Cleanup deletes records older than olderThan and returns the count.
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)

	// Backup copies the database into dir and returns the backup path.
	// An empty dir uses the default backups directory.
	Backup(ctx context.Context, dir string) (string, error)
}
