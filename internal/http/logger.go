package http

import (
	"fmt"

	"github.com/nsurely/motor-go/pkg/motor"
)

// leveledLogger routes retryablehttp's diagnostics to a motor.Logger.
type leveledLogger struct {
	logger motor.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, fields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, fields(keysAndValues))
}

// fields pairs up alternating keys and values. A trailing key without a value
// is kept with a nil value.
func fields(keysAndValues []any) map[string]any {
	out := make(map[string]any, len(keysAndValues)/2+1)

	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 < len(keysAndValues) {
			out[key] = keysAndValues[i+1]
		} else {
			out[key] = nil
		}
	}

	return out
}
