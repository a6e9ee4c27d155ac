package recorder

import "LevelSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAlert(_ *model.TouchEvent) error { return nil }
func (n *NoopRecorder) RecordPause(_ *model.PauseEvent) error { return nil }
func (n *NoopRecorder) RecordCycle(_ *CycleRecord) error      { return nil }
func (n *NoopRecorder) Close() error                          { return nil }
