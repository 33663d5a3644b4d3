package runner

// Result holds the outcome of one supervised execution. Every field is
// always populated: a result is never partially constructed. Exactly one
// of "ExitCode != nil" or "TimedOut" holds for a process that was
// actually spawned.
type Result struct {
	RunID     string // unique identifier for this run
	ExitCode  *int   // process exit status; nil if the process never completed
	Stdout    string // captured stdout, UTF-8 with invalid sequences replaced
	Stderr    string // captured stderr, same decoding
	TimedOut  bool   // true if the timeout elapsed before exit
	Truncated bool   // true if either stream exceeded the size cap
}

// Failure builds a result for an execution that was never attempted,
// such as a validation failure or a missing executable. The reason is
// carried in stderr so every caller can treat results uniformly.
func Failure(reason string) *Result {
	return &Result{Stderr: reason}
}
