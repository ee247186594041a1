package pdf

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t2550\t3300\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t100\t100\t80\t30\t90\tItem\n" +
	"5\t1\t1\t1\t1\t2\t600\t100\t60\t30\t80\tQty\n" +
	"5\t1\t1\t1\t2\t1\t100\t150\t120\t30\t70\tWidget\n" +
	"5\t1\t1\t1\t2\t2\t600\t150\t20\t30\t60\t2\n" +
	"5\t1\t1\t1\t3\t1\t100\t200\t40\t30\t-1\t \n"

func TestParseTSV(t *testing.T) {
	lines, err := parseTSV([]byte(sampleTSV))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Item", lines[0].words[0].text)
	assert.Equal(t, []float64{90, 80}, lines[0].confs)
	assert.Equal(t, 220.0, lines[1].words[0].x1)
}

func TestOCRStrategy_Tables(t *testing.T) {
	runner := &mockRunner{outputs: map[string][]byte{toolTesseract: []byte(sampleTSV)}}
	s := &ocrStrategy{runner: runner, language: "eng", resolution: 150, cellGap: 1.0}
	work := &scratch{data: buildPDF("x")}
	defer work.cleanup()

	tables, err := s.Tables(context.Background(), &pageInput{number: 2, scratch: work})
	require.NoError(t, err)
	require.Len(t, tables, 1)

	assert.Equal(t, [][]string{{"Item", "Qty"}, {"Widget", "2"}}, tables[0].Rows)
	assert.Equal(t, domain.TableSourceFallbackOCR, tables[0].Source)
	require.NotNil(t, tables[0].Confidence)
	assert.InDelta(t, 0.75, *tables[0].Confidence, 1e-9)

	require.Len(t, runner.calls, 2)
	assert.Equal(t, toolPdftoppm, runner.calls[0][0])
	assert.Contains(t, runner.calls[0], "150")
	assert.Contains(t, runner.calls[0], "2")
	assert.Equal(t, toolTesseract, runner.calls[1][0])
	assert.Contains(t, runner.calls[1], "tsv")
}

func TestOCRStrategy_RunnerError(t *testing.T) {
	runner := &mockRunner{errs: map[string]error{toolPdftoppm: errToolCrashed}}
	s := &ocrStrategy{runner: runner, language: "eng", resolution: 300, cellGap: 1.0}
	work := &scratch{data: buildPDF("x")}
	defer work.cleanup()

	_, err := s.Tables(context.Background(), &pageInput{number: 1, scratch: work})
	assert.ErrorIs(t, err, errToolCrashed)
}

func TestScratch_Cleanup(t *testing.T) {
	work := &scratch{data: []byte("%PDF-")}
	path, err := work.inputPath()
	require.NoError(t, err)

	again, err := work.inputPath()
	require.NoError(t, err)
	assert.Equal(t, path, again)

	dir := work.dir
	work.cleanup()
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestCheckAvailable(t *testing.T) {
	assert.NoError(t, CheckAvailable(allTools))

	err := CheckAvailable(noTools)
	assert.ErrorIs(t, err, ErrOCRToolNotFound)
	assert.ErrorIs(t, err, domain.ErrToolNotFound)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "tesseract")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}
