package actions

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrTablesFailed is returned by Report.Err when at least one table was skipped.
var ErrTablesFailed = errors.New("one or more tables failed")

// TableFailure records why a table produced no output.
type TableFailure struct {
	Table string `json:"table"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// Report summarises a generation run.
type Report struct {
	mu        sync.Mutex
	RunID     string         `json:"runId"`
	Generated []string       `json:"generated"`
	Filtered  []string       `json:"filtered,omitempty"`
	Failed    []TableFailure `json:"failed,omitempty"`
}

func (r *Report) generated(table string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Generated = append(r.Generated, table)
}

func (r *Report) failed(table string, stage string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed = append(r.Failed, TableFailure{Table: table, Stage: stage, Error: err.Error()})
}

// sort orders the report so output does not depend on worker scheduling.
func (r *Report) sort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	sort.Strings(r.Generated)
	sort.Strings(r.Filtered)
	sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i].Table < r.Failed[j].Table })
}

// Err returns ErrTablesFailed if any table failed.
func (r *Report) Err() error {
	if len(r.Failed) > 0 {
		return errors.Wrapf(ErrTablesFailed, "%v of %v tables", len(r.Failed), len(r.Failed)+len(r.Generated))
	}
	return nil
}

// Print writes a human readable summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Run %v: %v table(s) generated, %v failed\n", r.RunID, len(r.Generated), len(r.Failed))
	for _, f := range r.Failed {
		fmt.Fprintf(w, "  %v (%v): %v\n", f.Table, f.Stage, f.Error)
	}
}
