package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

const defaultRetentionDays = 30

var cleanupOlderThan string

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete stored pages older than a given age",
	Long: `Deletes page records created before the retention cutoff.

The age accepts Go durations such as 72h or a whole number of days such as 30d.
Without --older-than the configured retention.days is used.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().StringVar(&cleanupOlderThan, "older-than", "", "age cutoff, e.g. 30d or 720h")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	if maintenanceService == nil {
		return errors.New("maintenance service not configured")
	}

	age, err := retentionAge(cleanupOlderThan)
	if err != nil {
		return err
	}

	n, err := maintenanceService.Cleanup(commandContext(cmd), age)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	cmd.Printf("Removed %d records older than %s.\n", n, age)
	return nil
}

// retentionAge resolves the cleanup age from the flag or settings.
func retentionAge(flag string) (time.Duration, error) {
	if flag != "" {
		return parseAge(flag)
	}
	days := defaultRetentionDays
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && settings.Retention.Days > 0 {
			days = settings.Retention.Days
		}
	}
	return time.Duration(days) * 24 * time.Hour, nil
}

// parseAge accepts "Nd" in addition to time.ParseDuration syntax.
func parseAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid age %q: %w", s, domain.ErrInvalidInput)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid age %q: %w", s, domain.ErrInvalidInput)
	}
	return d, nil
}
