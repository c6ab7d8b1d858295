package colblock

import "github.com/bsm/colblock/codec"

// Logger is the minimal structured-logging collaborator the core consumes.
// Logging is kept out of the core as an external interface, so colblock
// never imports a logging library directly. It calls this interface, and
// internal/obs provides a zap-backed implementation for callers who want
// one wired up.
type Logger interface {
	Debugw(msg string, kv ...interface{})
	Warnw(msg string, kv ...interface{})
}

// NopLogger discards everything. It is the default when no Logger is
// supplied.
type NopLogger struct{}

func (NopLogger) Debugw(string, ...interface{}) {}
func (NopLogger) Warnw(string, ...interface{})  {}

// Metrics is the minimal metrics collector the core consumes, following the
// same external-interface treatment as Logger.
type Metrics interface {
	ObserveBlockWrite(algo codec.ID, srcLen, dstLen int)
	ObserveBlockRead(algo codec.ID, n int)
}

// NopMetrics discards everything. It is the default when no Metrics is
// supplied.
type NopMetrics struct{}

func (NopMetrics) ObserveBlockWrite(codec.ID, int, int) {}
func (NopMetrics) ObserveBlockRead(codec.ID, int)       {}

// Observability bundles the codec registry together with the two
// collaborator interfaces (Logger, Metrics) the encoder and decoder consume
// for diagnostics. It is the single argument WriteColumn/ReadColumn take for
// everything that isn't the column's own bytes, so adding a new
// collaborator interface later doesn't change every call site.
type Observability struct {
	Registry *codec.Registry
	Logger   Logger
	Metrics  Metrics
}

// norm fills in safe defaults for any unset field.
func (o Observability) norm() Observability {
	if o.Registry == nil {
		o.Registry = codec.Default
	}
	if o.Logger == nil {
		o.Logger = NopLogger{}
	}
	if o.Metrics == nil {
		o.Metrics = NopMetrics{}
	}
	return o
}
