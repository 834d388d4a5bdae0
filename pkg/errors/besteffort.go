package errors

// BestEffort is the outcome of a side effect whose failure must never reach the
// caller: audit writes and remote file deletion. Callers discard it on purpose
// (`_ = audit.Record(...)`); it exists so that the swallowing is visible at the call site.
type BestEffort struct {
	Op  string
	Err error
}

// Done reports a successful best-effort operation.
func Done(op string) BestEffort { return BestEffort{Op: op} }

// Failed reports a best-effort operation that did not complete.
func Failed(op string, err error) BestEffort { return BestEffort{Op: op, Err: err} }

// OK reports whether the side effect completed.
func (b BestEffort) OK() bool { return b.Err == nil }
