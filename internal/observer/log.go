package observer

import (
	"context"
	"log/slog"

	"github.com/elektrokombinacija/rgm/internal/core"
)

// Log writes every event to a structured logger.
type Log struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLog creates a logging observer emitting at level.
func NewLog(logger *slog.Logger, level slog.Level) *Log {
	return &Log{logger: logger, level: level}
}

func (l *Log) RobotMoved(id core.RobotID, from, to core.Position) {
	l.logger.LogAttrs(context.Background(), l.level, "robot moved",
		slog.Int("robot", int(id)),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.Int("distance", core.Distance(from, to)),
	)
}

func (l *Log) CycleIdentified(cycle []core.RobotID) {
	l.logger.LogAttrs(context.Background(), l.level, "cycle identified",
		slog.Any("robots", cycle),
		slog.Int("size", len(cycle)),
	)
}
