package execution

import "time"

// ExecutionResult aggregates the outcome of one execute call. Per-item
// failures are collected in Errors; a failed item never aborts the batch.
type ExecutionResult struct {
	Message        string
	Errors         []string
	Duration       time.Duration
	ItemsProcessed int
	ItemsFailed    int
	BytesFreed     int64
	Success        bool
}

// merge folds another result into this one.
func (r *ExecutionResult) merge(other ExecutionResult) {
	r.ItemsProcessed += other.ItemsProcessed
	r.ItemsFailed += other.ItemsFailed
	r.BytesFreed += other.BytesFreed
	r.Errors = append(r.Errors, other.Errors...)
}

// finalize computes the success flag and message after a batch completes.
func (r *ExecutionResult) finalize(started time.Time) {
	r.Duration = time.Since(started)
	r.Success = r.ItemsFailed == 0
	if !r.Success && r.Message == "" {
		r.Message = "completed with errors"
	}
}
