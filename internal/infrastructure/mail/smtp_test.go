package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/devcamper/devcamper-api/internal/core/ports"
)

func TestSMTPMailer_BuildsMessage(t *testing.T) {
	m, err := NewSMTPMailer(Config{Host: "smtp.example.com", Port: 2525, FromEmail: "noreply@devcamper.io", FromName: "DevCamper"})
	if err != nil {
		t.Fatalf("NewSMTPMailer: %v", err)
	}

	msg, err := m.build(ports.Message{To: "alice@example.com", Subject: "Password reset token", Text: "reset here"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	raw := buf.String()
	for _, want := range []string{"alice@example.com", "Password reset token", "noreply@devcamper.io", "reset here"} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSMTPMailer_RejectsBadRecipient(t *testing.T) {
	m, _ := NewSMTPMailer(Config{Host: "smtp.example.com", Port: 2525, FromEmail: "noreply@devcamper.io"})
	if _, err := m.build(ports.Message{To: "not an address"}); err == nil {
		t.Fatalf("expected error for bad recipient")
	}
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf))
	if err := m.Send(context.Background(), ports.Message{To: "a@b.io", Subject: "hi"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(buf.String(), `"to":"a@b.io"`) {
		t.Fatalf("expected recipient in log, got %s", buf.String())
	}
}
