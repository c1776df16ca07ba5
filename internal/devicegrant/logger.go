package devicegrant

// Logger is the logging capability the engine calls for structured events.
// *zap.SugaredLogger satisfies it directly. The engine never owns a sink:
// lifecycle belongs entirely to the caller, and the default is a no-op.
//
// Secrets only appear at debug level and only through the redacting String
// methods on the response types.
type Logger interface {
	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
