package domain

import "time"

// InputFile is one file submitted for processing.
type InputFile struct {
	Filename string
	Data     []byte
}

// BatchOptions controls a batch run.
type BatchOptions struct {
	// ExtractTables enables table extraction for every file.
	ExtractTables bool

	// Persist writes pages to the store.
	Persist bool

	// SaveToFiles writes JSON and text artifacts per file.
	SaveToFiles bool

	// Workers bounds parallel file processing. Values <= 1 process files in input order.
	Workers int
}

// FileOutcome describes a file that was processed successfully.
type FileOutcome struct {
	Filename    string        `json:"filename"`
	DocumentID  string        `json:"document_id,omitempty"`
	Duplicate   bool          `json:"duplicate"`
	PagesCount  int           `json:"pages_count"`
	TextLength  int           `json:"text_length"`
	TablesCount int           `json:"tables_count"`
	RecordIDs   []int64       `json:"record_ids,omitempty"`
	Artifacts   []string      `json:"artifacts,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// FileFailure describes a file that could not be processed.
type FileFailure struct {
	Filename string    `json:"filename"`
	Kind     ErrorKind `json:"kind"`
	Error    string    `json:"error"`
}

// BatchReport is the aggregate result of one batch call. It is not persisted.
type BatchReport struct {
	TotalFiles          int           `json:"total_files"`
	Processed           []FileOutcome `json:"processed"`
	Failed              []FileFailure `json:"failed"`
	TotalDuration       time.Duration `json:"total_duration"`
	TotalPages          int           `json:"total_pages"`
	SuccessRate         float64       `json:"success_rate"`
	AveragePagesPerFile float64       `json:"average_pages_per_file"`
	StartedAt           time.Time     `json:"started_at"`
	FinishedAt          time.Time     `json:"finished_at"`

	// Stats are the store totals after the run, nil when unavailable.
	Stats *Stats `json:"database_stats,omitempty"`
}

// NewBatchReport returns an empty report for total files.
func NewBatchReport(total int, started time.Time) *BatchReport {
	return &BatchReport{
		TotalFiles: total,
		Processed:  []FileOutcome{},
		Failed:     []FileFailure{},
		StartedAt:  started,
	}
}

// AddProcessed records a successful file.
func (r *BatchReport) AddProcessed(o FileOutcome) {
	r.Processed = append(r.Processed, o)
	r.TotalPages += o.PagesCount
}

// AddFailed records a failed file.
func (r *BatchReport) AddFailed(filename string, err error) {
	r.Failed = append(r.Failed, FileFailure{
		Filename: filename,
		Kind:     KindOf(err),
		Error:    err.Error(),
	})
}

// Reject counts files refused before processing as failures and
// recomputes the derived totals.
func (r *BatchReport) Reject(failures ...FileFailure) {
	if len(failures) == 0 {
		return
	}
	r.TotalFiles += len(failures)
	r.Failed = append(r.Failed, failures...)
	r.Finish(r.FinishedAt)
}

// Finish computes the derived totals.
func (r *BatchReport) Finish(finished time.Time) {
	r.FinishedAt = finished
	r.TotalDuration = finished.Sub(r.StartedAt)
	if r.TotalFiles > 0 {
		r.SuccessRate = float64(len(r.Processed)) / float64(r.TotalFiles)
	}
	if len(r.Processed) > 0 {
		r.AveragePagesPerFile = float64(r.TotalPages) / float64(len(r.Processed))
	}
}

// ProgressEvent is emitted after each file of a batch completes.
type ProgressEvent struct {
	Filename  string    `json:"filename"`
	Index     int       `json:"index"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Success   bool      `json:"success"`
	Duplicate bool      `json:"duplicate"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// ProgressFunc receives batch progress events.
type ProgressFunc func(ProgressEvent)
