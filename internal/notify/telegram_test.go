package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestSendPostsMessage(t *testing.T) {
	var gotPath, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		gotText = r.PostForm.Get("text")
		if r.PostForm.Get("chat_id") != "chat-1" {
			t.Fatalf("unexpected chat id: %s", r.PostForm.Get("chat_id"))
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram("tok", "chat-1", zerolog.Nop(), WithBaseURL(srv.URL))
	tg.Send(context.Background(), "hello")

	if gotPath != "/bottok/sendMessage" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotText != "hello" {
		t.Fatalf("unexpected text: %s", gotText)
	}
}

func TestSendSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	tg := NewTelegram("tok", "chat-1", zerolog.Nop(), WithBaseURL(srv.URL))
	// Must not panic or propagate anything.
	tg.Send(context.Background(), "hello")
}

func TestDisabledWithoutCredentials(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	tg := NewTelegram("", "", zerolog.Nop(), WithBaseURL(srv.URL))
	tg.Send(context.Background(), "hello")
	if called {
		t.Fatalf("disabled notifier must not hit the network")
	}
}
