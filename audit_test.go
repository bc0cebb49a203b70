package dashAuth

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/dashAuth/internal/fakebackend"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func withAudit(sink AuditSink) func(*Builder) {
	return func(b *Builder) {
		cfg := b.config
		cfg.Audit.Enabled = true
		cfg.Audit.BufferSize = 16
		b.WithConfig(cfg).WithAuditSink(sink)
	}
}

func nextEvent(t *testing.T, sink *ChannelSink) AuditEvent {
	t.Helper()
	select {
	case ev := <-sink.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("expected audit event to be received")
		return AuditEvent{}
	}
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	sink := &countingSink{}
	h := newEngineHarness(t, func(b *Builder) {
		b.WithAuditSink(sink)
	})

	_, _ = h.engine.Login(context.Background(), "a@b.com", "wrong", false)
	h.engine.Close()

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditVerificationRequiredEvent(t *testing.T) {
	sink := NewChannelSink(8)
	h := newEngineHarness(t, withAudit(sink))
	h.backend.AddAccount(fakebackend.Account{User: User{Email: "alice@example.com"}, Password: "pw"})

	_, _ = h.engine.Login(context.Background(), "alice@example.com", "pw", false)

	if ev := nextEvent(t, sink); ev.EventType != auditEventHydrateAnonymous {
		t.Fatalf("expected hydration event first, got %q", ev.EventType)
	}
	ev := nextEvent(t, sink)
	if ev.EventType != auditEventVerificationRequired || ev.Success {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Email != "ali*****@example.com" {
		t.Fatalf("expected masked email, got %q", ev.Email)
	}
	if ev.Status != 403 || ev.Error != string(auditErrVerificationRequired) {
		t.Fatalf("expected 403 verification_required, got %d %q", ev.Status, ev.Error)
	}
	if strings.Contains(ev.Error, "pw") {
		t.Fatal("raw error text leaked")
	}
}

func TestAuditLoginAndLogoutCarryUser(t *testing.T) {
	sink := NewChannelSink(8)
	h := newEngineHarness(t, withAudit(sink))
	u := h.verifiedAccount("bob@example.com", "secret1")
	ctx := context.Background()

	if _, err := h.engine.Login(ctx, "bob@example.com", "secret1", false); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := h.engine.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	nextEvent(t, sink)
	login := nextEvent(t, sink)
	if login.EventType != auditEventLoginSuccess || !login.Success || login.UserID != u.ID {
		t.Fatalf("unexpected login event %+v", login)
	}
	if login.Phase != PhaseAuthenticated.String() {
		t.Fatalf("expected authenticated phase, got %q", login.Phase)
	}
	logout := nextEvent(t, sink)
	if logout.EventType != auditEventLogout || logout.UserID != u.ID {
		t.Fatalf("unexpected logout event %+v", logout)
	}
}

func TestAuditBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	start := time.Now()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if dispatcher.Dropped() == 0 {
		t.Fatal("expected at least one dropped event")
	}
}

func TestAuditErrorCodeClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want AuditErrorCode
	}{
		{name: "nil", err: nil, want: ""},
		{name: "cooldown", err: &CooldownError{Remaining: time.Second}, want: auditErrCooldown},
		{name: "transition", err: ErrInvalidTransition, want: auditErrInvalidTransition},
		{name: "missing token", err: ErrMissingToken, want: auditErrInvalidResponse},
		{name: "corrupt", err: ErrCorruptUser, want: auditErrCorruptRecord},
		{name: "google disabled", err: ErrGoogleDisabled, want: auditErrIdentity},
		{name: "other", err: context.Canceled, want: auditErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := auditErrorCode(tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
