package pdf

import "os/exec"

// Config controls extraction.
type Config struct {
	// OCR enables the OCR table strategy. It also needs pdftoppm and
	// tesseract on PATH and only runs on pages without a text layer.
	OCR bool

	// OCRLanguage is passed to tesseract with -l.
	OCRLanguage string

	// OCRResolution is the pdftoppm rasterisation DPI.
	OCRResolution int

	// RowTolerance is the baseline distance, in font sizes, within which
	// glyphs belong to the same row.
	RowTolerance float64

	// CellGap is the horizontal gap, in font sizes, that separates two cells.
	CellGap float64

	// LookPath finds external tools. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// DefaultConfig returns the default extraction settings.
func DefaultConfig() Config {
	return Config{
		OCRLanguage:   "eng",
		OCRResolution: 300,
		RowTolerance:  0.5,
		CellGap:       1.0,
		LookPath:      exec.LookPath,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.OCRLanguage == "" {
		c.OCRLanguage = d.OCRLanguage
	}
	if c.OCRResolution <= 0 {
		c.OCRResolution = d.OCRResolution
	}
	if c.RowTolerance <= 0 {
		c.RowTolerance = d.RowTolerance
	}
	if c.CellGap <= 0 {
		c.CellGap = d.CellGap
	}
	if c.LookPath == nil {
		c.LookPath = d.LookPath
	}
	return c
}
