package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/joshua-takyi/eventsadmin/internal/models"
)

// EventSource is the read side of the event store used by exports.
type EventSource interface {
	ListEvents(ctx context.Context, q models.EventQuery) ([]*models.Event, error)
}

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version    string    `json:"version"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	EventCount int       `json:"event_count"`
	Statuses   []string  `json:"statuses,omitempty"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Format selects the export encoding.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatICS   Format = "ics"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(raw); f {
	case FormatJSONL, FormatICS:
		return f, nil
	case "":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want jsonl or ics)", raw)
	}
}

// ContentType is the MIME type stored alongside an upload.
func (f Format) ContentType() string {
	if f == FormatICS {
		return "text/calendar; charset=utf-8"
	}
	return contentTypeNDJSON
}

// sortByStart orders by start time. The store already sorts; this keeps the
// output stable for equal start times too.
func sortByStart(events []*models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].DateTime.Equal(events[j].DateTime) {
			return events[i].ID.Hex() < events[j].ID.Hex()
		}
		return events[i].DateTime.Before(events[j].DateTime)
	})
}

// ExportJSONL writes every event with one of statuses (all events when empty)
// to w: a header line, then one line per event ordered by start time.
func ExportJSONL(ctx context.Context, src EventSource, w io.Writer, statuses []models.EventStatus) error {
	events, err := src.ListEvents(ctx, models.ExportEventQuery(statuses))
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	sortByStart(events)

	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:    "1",
		Type:       "header",
		Timestamp:  time.Now().UTC(),
		EventCount: len(events),
		Statuses:   names,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, e := range events {
		if err := enc.Encode(record{Type: "event", Data: e}); err != nil {
			return fmt.Errorf("encode event %s: %w", e.ID.Hex(), err)
		}
	}
	return nil
}

// Run buffers the export in format and hands it to dest in a single write.
// It returns the number of bytes written.
func Run(ctx context.Context, src EventSource, dest Destination, format Format, statuses []models.EventStatus) (int, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatICS:
		err = ExportICS(ctx, src, &buf, statuses)
	default:
		err = ExportJSONL(ctx, src, &buf, statuses)
	}
	if err != nil {
		return 0, err
	}
	n := buf.Len()
	if err := dest.Write(ctx, buf.Bytes()); err != nil {
		return 0, err
	}
	return n, nil
}
