package eventsvc

import (
	"fmt"
	"sync"

	"github.com/trezcool/techproject/core"
)

// LogSink forwards domain events to the application logger. It stands in for
// the host platform's event bus in standalone deployments.
type LogSink struct {
	logger core.Logger
}

var _ core.EventSink = (*LogSink)(nil)

func NewLogSink(logger core.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(evt core.Event) {
	s.logger.Info(fmt.Sprintf(
		"event %s: project=%d context=%d task=%d group=%d",
		evt.Kind, evt.ProjectID, evt.ContextID, evt.TaskID, evt.GroupID,
	))
}

// RecordingSink captures emitted events for assertions in tests.
type RecordingSink struct {
	mu     sync.Mutex
	Events []core.Event
}

var _ core.EventSink = (*RecordingSink)(nil)

func (s *RecordingSink) Emit(evt core.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, evt)
}
