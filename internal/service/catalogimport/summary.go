package catalogimport

import (
	"fmt"

	"github.com/ignite/software-catalog/internal/datanorm"
)

// Source tags where a batch came from. It is written to the audit record.
type Source string

const (
	SourceJSON  Source = "json"
	SourceFile  Source = "file"
	SourceDemo  Source = "demo"
	SourceAsync Source = "async"
)

// State is a position in the batch lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateProcessing
	StateFinalizing
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StateValidating: "validating",
	StateProcessing: "processing",
	StateFinalizing: "finalizing",
	StateDone:       "done",
	StateFailed:     "failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Progress is reported to a batch's observer on every state change and
// after every row.
type Progress struct {
	State     State
	Processed int
	Total     int
}

// Batch is one import request.
type Batch struct {
	Rows    []datanorm.Row
	ActorID string
	Source  Source
	// HeaderRows is added to row numbers in messages: 0 for JSON input, 1
	// for files whose first line is a header.
	HeaderRows int
	// Lines, when it has one entry per row, overrides the computed row
	// number with the row's source line.
	Lines []int
	// OnProgress is optional.
	OnProgress func(Progress)
}

// rowNumber is the number reported for Rows[i].
func (b Batch) rowNumber(i int) int {
	if len(b.Lines) == len(b.Rows) {
		return b.Lines[i]
	}
	return i + 1 + b.HeaderRows
}

func (b Batch) report(p Progress) {
	if b.OnProgress != nil {
		b.OnProgress(p)
	}
}

// ImportError is a failed row: 1-based row number plus a readable message.
type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e ImportError) String() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

// Summary is the outcome of a completed batch.
type Summary struct {
	Imported int
	Total    int
	Errors   []ImportError
	Warnings []string
	EntryIDs []string
	BatchID  string
	// AuditID is empty when the audit record could not be written.
	AuditID string
	Message string
}

// Failed is the number of rows that produced an ImportError.
func (s *Summary) Failed() int { return len(s.Errors) }

// ErrorMessages renders the errors as "Row N: message" lines.
func (s *Summary) ErrorMessages() []string {
	out := make([]string, len(s.Errors))
	for i, e := range s.Errors {
		out[i] = e.String()
	}
	return out
}

// Response is the JSON shape returned to callers and stored for async jobs.
type Response struct {
	Imported int      `json:"imported"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Message  string   `json:"message"`
	BatchID  string   `json:"batchId,omitempty"`
	AuditID  string   `json:"auditId,omitempty"`
}

// Response converts the summary to its wire form.
func (s *Summary) Response() Response {
	r := Response{
		Imported: s.Imported,
		Total:    s.Total,
		Warnings: s.Warnings,
		Message:  s.Message,
		BatchID:  s.BatchID,
		AuditID:  s.AuditID,
	}
	if len(s.Errors) > 0 {
		r.Errors = s.ErrorMessages()
	}
	return r
}

func summaryMessage(imported, total, failed int) string {
	msg := fmt.Sprintf("%d of %d entries imported", imported, total)
	if failed > 0 {
		msg += fmt.Sprintf(", %d failed", failed)
	}
	return msg
}

// rowResult is what processing one row yields: either an entry ID or an
// error, plus any warnings.
type rowResult struct {
	entryID  string
	err      *ImportError
	warnings []string
}

func (s *Summary) add(r rowResult) {
	s.Warnings = append(s.Warnings, r.warnings...)
	if r.err != nil {
		s.Errors = append(s.Errors, *r.err)
		return
	}
	s.Imported++
	s.EntryIDs = append(s.EntryIDs, r.entryID)
}
