package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure MaintenanceService implements the interface.
var _ driving.MaintenanceService = (*MaintenanceService)(nil)

// backupTimeLayout stamps backup file names.
const backupTimeLayout = "20060102_150405"

// MaintenanceService runs retention sweeps and database backups.
type MaintenanceService struct {
	textStore driven.TextStore
	backup    driven.DatabaseBackup
	now       func() time.Time
}

// NewMaintenanceService creates a maintenance service.
func NewMaintenanceService(textStore driven.TextStore) *MaintenanceService {
	return &MaintenanceService{textStore: textStore, now: time.Now}
}

// SetBackup enables Backup.
func (s *MaintenanceService) SetBackup(backup driven.DatabaseBackup) {
	s.backup = backup
}

// Cleanup deletes records created more than olderThan ago.
func (s *MaintenanceService) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("retention age must be positive, got %s: %w", olderThan, domain.ErrInvalidInput)
	}
	n, err := s.textStore.CleanupOldRecords(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("cleaning up records: %w", err)
	}
	logger.Info("retention sweep removed %d records older than %s", n, olderThan)
	return n, nil
}

// Backup copies the database into dir and returns the backup path. An empty
// dir means a backups directory next to the database. The file is named
// <db>_backup_<timestamp><ext>.
func (s *MaintenanceService) Backup(ctx context.Context, dir string) (string, error) {
	if s.backup == nil {
		return "", errors.New("database backup not configured")
	}
	live := s.backup.Path()
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(filepath.Dir(live), "backups")
	}
	ext := filepath.Ext(live)
	stem := strings.TrimSuffix(filepath.Base(live), ext)
	dest := filepath.Join(dir, fmt.Sprintf("%s_backup_%s%s", stem, s.now().Format(backupTimeLayout), ext))

	if err := s.backup.Backup(ctx, dest); err != nil {
		return "", fmt.Errorf("backing up database: %w", err)
	}
	logger.Info("database backed up to %s", dest)
	return dest, nil
}
