package recorder

// NoopRecorder discards everything. Used when no recorder path is
// configured.
type NoopRecorder struct{}

func (NoopRecorder) RecordTick(*TickSnapshot) error     { return nil }
func (NoopRecorder) RecordVerdict(*VerdictRecord) error { return nil }
func (NoopRecorder) Close() error                       { return nil }
