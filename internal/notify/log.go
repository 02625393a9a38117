package notify

import (
	"context"
	"log/slog"
)

// LogSender writes notifications to the application log. It is the default
// sender when no chat-platform adapter is wired in.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a Sender backed by the given logger
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

var _ Sender = (*LogSender)(nil)

func (l *LogSender) Send(ctx context.Context, target Target, message string, opts Options) error {
	l.logger.Info("notify",
		slog.String("target", string(target)),
		slog.String("message", message),
		slog.Bool("ephemeral", opts.Ephemeral),
	)
	return nil
}

func (l *LogSender) Edit(ctx context.Context, target Target, message string, opts Options) error {
	l.logger.Info("notify edit",
		slog.String("target", string(target)),
		slog.String("message", message),
	)
	return nil
}
