package service

import (
	"time"

	"go.uber.org/zap"
)

// TurnRecord is one completed (or failed) advisory turn, logged for
// operators
type TurnRecord struct {
	ConversationID string
	OwnerID        string
	Crop           string
	QuestionLen    int
	ReplyLen       int
	Parsed         bool
	Duration       time.Duration
	Err            error
}

// TurnLogger records turn audit entries on a separate goroutine so logging
// can never block or fail a turn. Entries are dropped when the buffer is
// full.
type TurnLogger struct {
	entries chan TurnRecord
	done    chan struct{}
	logger  *zap.Logger
}

// NewTurnLogger creates and starts a turn logger
func NewTurnLogger(logger *zap.Logger) *TurnLogger {
	t := &TurnLogger{
		entries: make(chan TurnRecord, 256),
		done:    make(chan struct{}),
		logger:  logger,
	}
	go t.run()
	return t
}

// Record enqueues a turn record without blocking
func (t *TurnLogger) Record(rec TurnRecord) {
	select {
	case t.entries <- rec:
	default:
		// audit buffer full, drop rather than block the turn
	}
}

// Close drains pending records and stops the logger
func (t *TurnLogger) Close() {
	close(t.entries)
	<-t.done
}

func (t *TurnLogger) run() {
	defer close(t.done)
	for rec := range t.entries {
		fields := []zap.Field{
			zap.String("conversation_id", rec.ConversationID),
			zap.String("owner_id", rec.OwnerID),
			zap.String("crop", rec.Crop),
			zap.Int("question_len", rec.QuestionLen),
			zap.Int("reply_len", rec.ReplyLen),
			zap.Bool("parsed", rec.Parsed),
			zap.Duration("duration", rec.Duration),
		}
		if rec.Err != nil {
			t.logger.Warn("advisory turn failed", append(fields, zap.Error(rec.Err))...)
			continue
		}
		t.logger.Info("advisory turn", fields...)
	}
}
