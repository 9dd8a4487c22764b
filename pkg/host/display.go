package host

import (
	"context"

	"go.uber.org/zap"

	"fbbridge/pkg/protocol"
)

// LogDisplay renders messages into the host log. Modal messages are logged
// at warn level.
type LogDisplay struct{}

func (LogDisplay) ShowMessage(_ context.Context, msg string, opts *protocol.MessageOptions) error {
	fields := []zap.Field{zap.String("msg", msg)}
	if opts != nil && opts.Detail != "" {
		fields = append(fields, zap.String("detail", opts.Detail))
	}
	if opts != nil && opts.Modal {
		zap.L().Warn("show message", fields...)
		return nil
	}
	zap.L().Info("show message", fields...)
	return nil
}
