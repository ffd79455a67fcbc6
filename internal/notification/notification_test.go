package notification

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerNotifierMasksDestination(t *testing.T) {
	var buf bytes.Buffer
	n := NewLoggerNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := n.Send(context.Background(), Message{Kind: KindAccountCreated, Destination: "9999991234", Body: "hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "******1234") || strings.Contains(out, "9999991234") {
		t.Fatalf("expected masked destination, got %s", out)
	}
}

func TestNilLoggerNotifierIsNoop(t *testing.T) {
	var n *LoggerNotifier
	if err := n.Send(context.Background(), Message{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
