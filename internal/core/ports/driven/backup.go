package driven

import "context"

// DatabaseBackup writes consistent copies of the record database.
type DatabaseBackup interface {
	// Backup writes a copy of the database to dest, which must not exist.
	Backup(ctx context.Context, dest string) error

	// Path returns the live database file path.
	Path() string
}
