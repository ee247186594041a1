package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var backupDir string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the database to a timestamped backup file",
	Long: `Writes a consistent copy of the folio database.

Without --dir the copy goes to a backups directory next to the database.
The live database stays usable while the copy is taken.`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVar(&backupDir, "dir", "", "directory for the backup file")
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, _ []string) error {
	if maintenanceService == nil {
		return errors.New("maintenance service not configured")
	}

	path, err := maintenanceService.Backup(commandContext(cmd), backupDir)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	cmd.Printf("Database backed up to %s\n", path)
	return nil
}
