package store

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Modzmart2112/Tracker-sub001/config"
	"github.com/Modzmart2112/Tracker-sub001/models"
)

func TestNotifier_SendSignsBody(t *testing.T) {
	var gotBody []byte
	var gotSig, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get("X-Tracker-Signature")
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	n := NewNotifier(config.WebhookConfig{URL: srv.URL, Secret: "s3cret"})
	price := 99.0
	ev := &JobEvent{
		Type:       EventJobCompleted,
		JobID:      "job-1",
		Products:   []models.ScrapedProduct{{Title: "Makita XFD131 Drill Kit", Price: &price}},
		TotalItems: 1,
	}
	if err := n.Send(context.Background(), ev); err != nil {
		t.Fatalf("Send: %v", err)
	}

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}
	if gotUA != "Tracker-Webhook/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}

	var decoded JobEvent
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("body not valid JSON: %v", err)
	}
	if decoded.Type != EventJobCompleted || len(decoded.Products) != 1 || decoded.Products[0].Title != "Makita XFD131 Drill Kit" {
		t.Errorf("decoded event = %+v", decoded)
	}
}

func TestNotifier_SendNoSecretSkipsSignature(t *testing.T) {
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Tracker-Signature")
	}))
	defer srv.Close()

	n := NewNotifier(config.WebhookConfig{URL: srv.URL})
	if err := n.Send(context.Background(), &JobEvent{Type: EventJobFailed, JobID: "job-2"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotSig != "" {
		t.Errorf("unexpected signature header %q without a secret", gotSig)
	}
}

func TestNotifier_SendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(config.WebhookConfig{URL: srv.URL})
	if err := n.Send(context.Background(), &JobEvent{Type: EventJobCompleted}); err == nil {
		t.Error("Send should fail on a 500 response")
	}
}

func TestNotifier_Enabled(t *testing.T) {
	if NewNotifier(config.WebhookConfig{}).Enabled() {
		t.Error("notifier without a URL should be disabled")
	}
	if !NewNotifier(config.WebhookConfig{URL: "https://consumer.example/hook"}).Enabled() {
		t.Error("notifier with a URL should be enabled")
	}
}
