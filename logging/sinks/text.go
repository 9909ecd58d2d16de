package sinks

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"flightsim/logging"
)

const textTimestampLayout = "2006-01-02 15:04:05.000"

// Text writes one timestamped line per event, per spec.md §6's
// output/log_brief.txt and output/log_detail.txt contract. Detail includes
// the payload; brief omits it.
type Text struct {
	mu       sync.Mutex
	writer   *bufio.Writer
	detailed bool
}

// NewText constructs a Text sink. detailed selects log_detail.txt's fuller
// line format over log_brief.txt's terse one.
func NewText(w io.Writer, detailed bool) *Text {
	if w == nil {
		w = io.Discard
	}
	return &Text{writer: bufio.NewWriter(w), detailed: detailed}
}

func (t *Text) Write(event logging.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := event.Time.Format(textTimestampLayout)
	var err error
	if t.detailed {
		_, err = fmt.Fprintf(t.writer, "[%s] tick=%d %s actor=%s%s\n",
			ts, event.Tick, event.Type, formatEntity(event.Actor), formatPayload(event.Payload))
	} else {
		_, err = fmt.Fprintf(t.writer, "[%s] tick=%d %s\n", ts, event.Tick, event.Type)
	}
	if err != nil {
		return err
	}
	return t.writer.Flush()
}

func (t *Text) Close(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writer.Flush()
}
