package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure extraction, batch, server and LLM settings.

Settings are stored in ~/.folio/config.toml. Environment variables named
FOLIO_<SECTION>_<KEY> override stored values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Stores one setting, for example:

  folio settings set batch.workers 4
  folio settings set extraction.ocr true
  folio settings set batch.timeout 10m`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for document summaries and chat.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	if settings.DataDir != "" {
		cmd.Printf("Data directory: %s\n\n", settings.DataDir)
	}

	cmd.Println("[Extraction]")
	cmd.Printf("  Tables: %s\n", yesNo(settings.Extraction.Tables))
	cmd.Printf("  OCR: %s\n", yesNo(settings.Extraction.OCR))
	if settings.Extraction.OCR {
		cmd.Printf("  OCR language: %s\n", settings.Extraction.OCRLanguage)
		cmd.Printf("  OCR resolution: %d dpi\n", settings.Extraction.OCRResolution)
	}
	cmd.Println()

	cmd.Println("[Batch]")
	cmd.Printf("  Workers: %d\n", settings.Batch.Workers)
	if settings.Batch.Timeout > 0 {
		cmd.Printf("  Timeout: %s\n", settings.Batch.Timeout)
	} else {
		cmd.Printf("  Timeout: none\n")
	}
	cmd.Printf("  Save to files: %s\n", yesNo(settings.Batch.SaveToFiles))
	if settings.Batch.OutputDir != "" {
		cmd.Printf("  Output directory: %s\n", settings.Batch.OutputDir)
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  Max upload: %s\n", humanBytes(settings.Server.MaxUploadBytes))
	cmd.Println()

	cmd.Println("[Retention]")
	cmd.Printf("  Days: %d\n", settings.Retention.Days)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	if settings.LLM.Provider != domain.AIProviderNone {
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
		if settings.LLM.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
		}
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
		if settings.LLM.RequestsPerMinute > 0 {
			cmd.Printf("  Rate limit: %d requests/min\n", settings.LLM.RequestsPerMinute)
		}
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'folio settings llm' or 'folio settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	cmd.Printf("%s set.\n", args[0])
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key; empty keeps a key from the environment
	cmd.Print("Enter API key (leave empty to use the environment): ")
	apiKey := readPassword(cmd.InOrStdin(), reader)
	cmd.Println()

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, else reads a line.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
