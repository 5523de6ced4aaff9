package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

type watermillLogger struct {
	log *zap.Logger
}

// NewWatermillLogger routes watermill's internal logging into zap.
func NewWatermillLogger(log *zap.Logger) watermill.LoggerAdapter {
	return &watermillLogger{log: log.Named("watermill")}
}

func (a *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(convertFields(fields), zap.Error(err))...)
}

func (a *watermillLogger) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, convertFields(fields)...)
}

func (a *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, convertFields(fields)...)
}

func (a *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, convertFields(fields)...)
}

func (a *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{log: a.log.With(convertFields(fields)...)}
}

func convertFields(fields watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
