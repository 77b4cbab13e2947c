package extract

// repeatLogEvery bounds log spam from a condition that persists across
// cycles: the first occurrence is logged, then every Nth identical repeat
// with its running count.
const repeatLogEvery = 10

type failureState struct {
	msg   string
	count int
}

// noteFailure logs a stream failure, suppressing identical repeats.
func (e *Engine) noteFailure(contractID, stream string, err error) {
	if n := e.bump(contractID, stream, err.Error()); n == 1 {
		e.logger.Warn("stream extraction failed",
			"contract", contractID,
			"stream", stream,
			"error", err,
		)
	} else if n%repeatLogEvery == 0 {
		e.logger.Warn("stream extraction still failing",
			"contract", contractID,
			"stream", stream,
			"occurrences", n,
			"error", err,
		)
	}
}

// noteSkip logs a missing data file, suppressing identical repeats. A skip
// is expected before the writer creates the file, so it logs at info.
func (e *Engine) noteSkip(contractID, stream, path string) {
	if n := e.bump(contractID, stream, "missing "+path); n == 1 {
		e.logger.Info("data file missing, stream skipped",
			"contract", contractID,
			"stream", stream,
			"path", path,
		)
	} else if n%repeatLogEvery == 0 {
		e.logger.Info("data file still missing",
			"contract", contractID,
			"stream", stream,
			"path", path,
			"occurrences", n,
		)
	}
}

// bump returns the consecutive count of this exact condition for the stream,
// resetting whenever the condition changes.
func (e *Engine) bump(contractID, stream, msg string) int {
	key := contractID + "/" + stream
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.failures[key]
	if st == nil || st.msg != msg {
		e.failures[key] = &failureState{msg: msg, count: 1}
		return 1
	}
	st.count++
	return st.count
}

// clearFailure resets the stream's failure tracking after a clean cycle.
func (e *Engine) clearFailure(contractID, stream string) {
	key := contractID + "/" + stream
	e.mu.Lock()
	delete(e.failures, key)
	e.mu.Unlock()
}
