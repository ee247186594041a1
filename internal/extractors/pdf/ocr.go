package pdf

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// scratch is a private working directory for one extraction.
// It is created on first use and removed by cleanup.
type scratch struct {
	data []byte
	dir  string
	pdf  string
}

// inputPath writes the PDF into the scratch dir once and returns its path.
func (s *scratch) inputPath() (string, error) {
	if s.pdf != "" {
		return s.pdf, nil
	}
	dir, err := os.MkdirTemp("", "folio-ocr-*")
	if err != nil {
		return "", fmt.Errorf("creating scratch dir: %w", err)
	}
	s.dir = dir
	path := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(path, s.data, 0600); err != nil {
		return "", fmt.Errorf("writing scratch pdf: %w", err)
	}
	s.pdf = path
	return path, nil
}

// cleanup removes the scratch dir if it was created.
func (s *scratch) cleanup() {
	if s.dir != "" {
		os.RemoveAll(s.dir) //nolint:errcheck
		s.dir, s.pdf = "", ""
	}
}

// ocrStrategy rasterises a page and reads word boxes with tesseract.
type ocrStrategy struct {
	runner     CommandRunner
	language   string
	resolution int
	cellGap    float64
}

// Source returns domain.TableSourceFallbackOCR.
func (s *ocrStrategy) Source() domain.TableSource {
	return domain.TableSourceFallbackOCR
}

// Tables renders the page to PNG, runs tesseract in TSV mode and groups
// the recognised words into rows and cells. Pages with a text layer are
// left to the other strategies.
func (s *ocrStrategy) Tables(ctx context.Context, page *pageInput) ([]domain.Table, error) {
	if page.text != "" {
		return nil, nil
	}
	input, err := page.scratch.inputPath()
	if err != nil {
		return nil, err
	}
	n := strconv.Itoa(page.number)
	prefix := filepath.Join(filepath.Dir(input), "page-"+n)

	if _, err := s.runner.Run(ctx, toolPdftoppm,
		"-f", n, "-l", n, "-r", strconv.Itoa(s.resolution), "-png", "-singlefile", input, prefix,
	); err != nil {
		return nil, fmt.Errorf("rasterising page %d: %w", page.number, err)
	}

	out, err := s.runner.Run(ctx, toolTesseract, prefix+".png", "stdout", "-l", s.language, "--psm", "6", "tsv")
	if err != nil {
		return nil, fmt.Errorf("recognising page %d: %w", page.number, err)
	}

	lines, err := parseTSV(out)
	if err != nil {
		return nil, err
	}

	cells := make([][]string, len(lines))
	for i, line := range lines {
		cells[i] = rowCells(line.words, s.cellGap)
	}

	var tables []domain.Table
	for _, sp := range tableSpans(cells) {
		var sum float64
		var count int
		for _, line := range lines[sp.start:sp.end] {
			for _, c := range line.confs {
				sum += c
				count++
			}
		}
		var conf *float64
		if count > 0 {
			conf = domain.Confidence(sum / float64(count) / 100)
		}
		tables = append(tables, domain.NewTable(cells[sp.start:sp.end], domain.TableSourceFallbackOCR, conf))
	}
	return tables, nil
}

// ocrLine is one tesseract line with per-word confidence.
type ocrLine struct {
	words layoutRow
	confs []float64
}

// TSV columns emitted by tesseract.
const (
	tsvLevel = iota
	tsvPage
	tsvBlock
	tsvPar
	tsvLine
	tsvWord
	tsvLeft
	tsvTop
	tsvWidth
	tsvHeight
	tsvConf
	tsvText
	tsvColumns
)

// tsvWordLevel marks word rows in tesseract TSV output.
const tsvWordLevel = "5"

// parseTSV groups tesseract word rows into lines in reading order.
func parseTSV(data []byte) ([]ocrLine, error) {
	var lines []ocrLine
	index := make(map[string]int)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	first := true
	for scanner.Scan() {
		if first {
			first = false
			if strings.HasPrefix(scanner.Text(), "level") {
				continue
			}
		}
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < tsvColumns || fields[tsvLevel] != tsvWordLevel {
			continue
		}
		text := strings.TrimSpace(fields[tsvText])
		conf, err := strconv.ParseFloat(fields[tsvConf], 64)
		if text == "" || err != nil || conf < 0 {
			continue
		}
		left, errL := strconv.ParseFloat(fields[tsvLeft], 64)
		width, errW := strconv.ParseFloat(fields[tsvWidth], 64)
		height, errH := strconv.ParseFloat(fields[tsvHeight], 64)
		if errL != nil || errW != nil || errH != nil {
			continue
		}

		key := fields[tsvPage] + "/" + fields[tsvBlock] + "/" + fields[tsvPar] + "/" + fields[tsvLine]
		i, ok := index[key]
		if !ok {
			i = len(lines)
			index[key] = i
			lines = append(lines, ocrLine{})
		}
		lines[i].words = append(lines[i].words, word{text: text, x0: left, x1: left + width, size: height})
		lines[i].confs = append(lines[i].confs, conf)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading tesseract output: %w", err)
	}
	return lines, nil
}
