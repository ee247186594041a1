package logger

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture enables the pipeline log into a buffer for the duration of the test.
func capture(t *testing.T, on bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(on)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(nil)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func(string, ...any)
		want string
	}{
		{"debug", Debug, "[DEBUG] page 3 of a.pdf\n"},
		{"info", Info, "[INFO] page 3 of a.pdf\n"},
		{"warn", Warn, "[WARN] page 3 of a.pdf\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log("page %d of %s", 3, "a.pdf")
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestOnlyWarnWhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("d")
	Info("i")
	Warn("store stats unavailable: %s", "locked")
	Section("s")

	assert.Equal(t, "[WARN] store stats unavailable: locked\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := capture(t, true)

	Section("Batch")

	assert.Equal(t, "\n=== Batch ===\n", buf.String())
}

func TestConcurrentUse(t *testing.T) {
	capture(t, false)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(i%2 == 0)
			Info("file %d", i)
			IsVerbose()
		}()
	}
	wg.Wait()
}
