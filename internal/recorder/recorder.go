package recorder

import (
	"time"

	"LevelSentinel/internal/model"
)

// CycleRecord summarizes one completed scan cycle.
type CycleRecord struct {
	StartedAt time.Time
	Duration  time.Duration
	Scanned   int
	Skipped   int
	Failed    int
	Alerts    int
}

// Recorder journals what the bot did. It never feeds state back into scanning.
type Recorder interface {
	RecordAlert(evt *model.TouchEvent) error
	RecordPause(evt *model.PauseEvent) error
	RecordCycle(rec *CycleRecord) error
	Close() error
}
