package log

// Logger receives protocol events from a unit's link and dispatchers.
// Log is called on the dispatcher goroutine, so sinks must not block it.
type Logger interface {
	Log(event Event)
}

// NoopLogger drops every event. Dispatchers substitute it for a nil
// ProtocolLogger.
type NoopLogger struct{}

// Log does nothing.
func (NoopLogger) Log(Event) {}

// MultiLogger copies each event to several sinks in order, typically the
// console adapter and a .dlog capture.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger fans events out to sinks. Nil sinks are skipped.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Log forwards event to every sink.
func (m *MultiLogger) Log(event Event) {
	for _, s := range m.sinks {
		s.Log(event)
	}
}

var (
	_ Logger = NoopLogger{}
	_ Logger = (*MultiLogger)(nil)
)
