package notify

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestRecorder verifies notifications are kept in order and Last reports the newest.
func TestRecorder(t *testing.T) {
	var r Recorder
	if _, ok := r.Last(); ok {
		t.Fatal("empty recorder should have no last notification")
	}
	r.Notify(Notification{Type: Info, Text: "a"})
	r.Notify(Notification{Type: Error, Text: "b"})

	all := r.All()
	if len(all) != 2 || all[0].Text != "a" || all[1].Text != "b" {
		t.Errorf("All() = %v", all)
	}
	if last, _ := r.Last(); last.Type != Error {
		t.Errorf("Last() = %v, want error", last)
	}
}

// TestLogNotifier verifies severity maps onto log levels.
func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := LogNotifier{Log: slog.New(slog.NewTextHandler(&buf, nil))}
	n.Notify(Notification{Type: Error, Text: "Error fetching workouts"})
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("log output = %q, want ERROR level", buf.String())
	}
}
