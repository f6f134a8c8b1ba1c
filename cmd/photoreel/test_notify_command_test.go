package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestTestNotifyDisabled(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications disabled")
}

func TestPublishSendsNotification(t *testing.T) {
	var mu sync.Mutex
	var titles, bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		titles = append(titles, r.Header.Get("Title"))
		bodies = append(bodies, string(body))
		mu.Unlock()
	}))
	t.Cleanup(srv.Close)

	env := setupCLITestEnv(t)
	env.notifyTopic = srv.URL + "/gallery"
	env.writeConfig(t)
	env.writeRawAlbum(t, "raw", "1.jpg")

	out, _, err := runCLI(t, env, "", "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")

	publishForTest(t, env, "raw", "Beach Day")

	mu.Lock()
	defer mu.Unlock()
	if len(titles) != 2 {
		t.Fatalf("expected 2 notifications, got %d: %q", len(titles), titles)
	}
	if titles[1] != "photoreel - Album Published" || !strings.Contains(bodies[1], "Beach Day (beach_day, 1 photos)") {
		t.Fatalf("unexpected publish notification: %q %q", titles[1], bodies[1])
	}
}
