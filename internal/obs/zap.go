// Package obs provides concrete Logger and Metrics implementations for
// callers that want colblock wired up to a real logging/metrics stack rather
// than the library's no-op defaults.
package obs

import "go.uber.org/zap"

// ZapLogger adapts a *zap.Logger to colblock.Logger, turning each key/value
// pair into a zap.Field the same way ajitpratap0-nebula's and
// matrixorigin-matrixone's own call sites build fields
// (zap.String("k", v), zap.Any("k", v)) rather than going through
// SugaredLogger's loosely typed Debugw.
type ZapLogger struct {
	l *zap.Logger
}

// NewZapLogger wraps l. A nil l is replaced with zap.NewNop().
func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{l: l}
}

func (z *ZapLogger) Debugw(msg string, kv ...interface{}) { z.l.Debug(msg, fields(kv)...) }
func (z *ZapLogger) Warnw(msg string, kv ...interface{})  { z.l.Warn(msg, fields(kv)...) }

// fields turns a ...interface{} key/value sequence into zap.Field values.
// An odd trailing argument is logged under "extra" rather than dropped.
func fields(kv []interface{}) []zap.Field {
	n := len(kv) / 2
	out := make([]zap.Field, 0, n+1)
	i := 0
	for ; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		out = append(out, zap.Any(key, kv[i+1]))
	}
	if i < len(kv) {
		out = append(out, zap.Any("extra", kv[i]))
	}
	return out
}
