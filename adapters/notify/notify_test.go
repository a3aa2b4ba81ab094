package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
	"github.com/bhargav676/intern/internal/config"
)

func alertNotification() repositories.Notification {
	r := entities.NewReading("u1", "user-u1", 9.4, 3, 300, 17.7, 83.2)
	return repositories.Notification{
		Kind:    repositories.NotificationAlert,
		To:      "river@example.com",
		Name:    "river",
		Body:    "Flush the tank.",
		Reading: r,
	}
}

func TestRender(t *testing.T) {
	subject, body, err := Render(alertNotification())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if subject != "Water quality alert" {
		t.Errorf("Unexpected subject %q", subject)
	}
	for _, want := range []string{"Hello river", "pH: 9.4", "Flush the tank."} {
		if !strings.Contains(body, want) {
			t.Errorf("Body missing %q:\n%s", want, body)
		}
	}

	_, body, err = Render(repositories.Notification{
		Kind:     repositories.NotificationWelcome,
		Name:     "river",
		AccessID: "acc-123",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(body, "Access ID: acc-123") {
		t.Errorf("Welcome body should include access id:\n%s", body)
	}

	if _, _, err := Render(repositories.Notification{Kind: "unknown"}); err == nil {
		t.Error("Unknown kind should fail to render")
	}
}

func TestEmailNotifier_SkipsWhenUnconfigured(t *testing.T) {
	e := NewEmailNotifier(config.SMTPConfig{}, zap.NewNop())
	e.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Error("sendMail should not be called without SMTP config")
		return nil
	}
	if err := e.Notify(context.Background(), alertNotification()); err != nil {
		t.Errorf("Unconfigured notifier should not fail, got: %v", err)
	}
}

func TestEmailNotifier_Sends(t *testing.T) {
	cfg := config.SMTPConfig{Host: "smtp.test", Port: 2525, Username: "bot", Password: "pw", From: "bot@test"}
	e := NewEmailNotifier(cfg, zap.NewNop())

	var gotAddr string
	var gotTo []string
	var gotMsg string
	e.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	if err := e.Notify(context.Background(), alertNotification()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if gotAddr != "smtp.test:2525" {
		t.Errorf("Unexpected addr %s", gotAddr)
	}
	if len(gotTo) != 1 || gotTo[0] != "river@example.com" {
		t.Errorf("Unexpected recipients %v", gotTo)
	}
	if !strings.Contains(gotMsg, "Subject: Water quality alert\r\n") {
		t.Errorf("Message missing subject header:\n%s", gotMsg)
	}

	e.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay denied") }
	if err := e.Notify(context.Background(), alertNotification()); err == nil {
		t.Error("Transport failure should be returned")
	}
}

func TestWebhookNotifier(t *testing.T) {
	var calls int32
	var payload WebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Invalid webhook body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	w := NewWebhookNotifier(server.URL, time.Second, zap.NewNop())

	if err := w.Notify(context.Background(), alertNotification()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if payload.Reading == nil || payload.Reading.PH != 9.4 {
		t.Errorf("Webhook should carry the reading, got %+v", payload)
	}

	// Account notifications are not forwarded
	_ = w.Notify(context.Background(), repositories.Notification{Kind: repositories.NotificationWelcome, AccessID: "secret"})
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("Expected 1 webhook call, got %d", n)
	}
}

type recordingNotifier struct {
	err   error
	calls int
}

func (r *recordingNotifier) Notify(ctx context.Context, n repositories.Notification) error {
	r.calls++
	return r.err
}

func TestMulti(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("down")}
	ok := &recordingNotifier{}

	err := Multi{failing, ok}.Notify(context.Background(), alertNotification())
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Errorf("Expected joined error, got %v", err)
	}
	if ok.calls != 1 {
		t.Error("A failing notifier must not stop the others")
	}
}
