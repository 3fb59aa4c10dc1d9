package remotelog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/SergeiKhy/shorturl-service/pkg/remotelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClient_SendsEvent проверяет формат запроса к лог-сервису
func TestClient_SendsEvent(t *testing.T) {
	var gotEvent remotelog.Event
	var gotAuth, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEvent))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(remotelog.Response{
			LogID:   "12345",
			Message: "log created successfully",
		})
	}))
	defer server.Close()

	client := remotelog.NewClient(server.URL, "secret-token", nil)
	client.Log(context.Background(), remotelog.StackBackend, remotelog.LevelError, remotelog.PackageHandler, "received string, expected bool")

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "backend", gotEvent.Stack)
	assert.Equal(t, "error", gotEvent.Level)
	assert.Equal(t, "handler", gotEvent.Package)
	assert.Equal(t, "received string, expected bool", gotEvent.Message)
}

// TestClient_NormalizesFields проверяет приведение полей к нижнему регистру
func TestClient_NormalizesFields(t *testing.T) {
	var gotEvent remotelog.Event

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotEvent)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := remotelog.NewClient(server.URL, "token", nil)
	client.Log(context.Background(), "Backend", "ERROR", "Handler", "msg")

	assert.Equal(t, "backend", gotEvent.Stack)
	assert.Equal(t, "error", gotEvent.Level)
	assert.Equal(t, "handler", gotEvent.Package)
}

// TestClient_DropsInvalidEvents проверяет, что невалидные события
// не доходят до сервера
func TestClient_DropsInvalidEvents(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := remotelog.NewClient(server.URL, "token", nil)

	tests := []struct {
		name  string
		stack remotelog.Stack
		level remotelog.Level
		pkg   remotelog.Package
	}{
		{"невалидный stack", "mobile", remotelog.LevelInfo, remotelog.PackageHandler},
		{"невалидный level", remotelog.StackBackend, "critical", remotelog.PackageHandler},
		{"невалидный package", remotelog.StackBackend, remotelog.LevelInfo, "kernel"},
		{"backend-package на frontend-стеке", remotelog.StackFrontend, remotelog.LevelInfo, remotelog.PackageDB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client.Log(context.Background(), tt.stack, tt.level, tt.pkg, "msg")
			assert.Equal(t, int64(0), requests.Load())
		})
	}
}

// TestClient_FrontendPackages проверяет набор пакетов frontend-стека
func TestClient_FrontendPackages(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := remotelog.NewClient(server.URL, "token", nil)
	client.Log(context.Background(), remotelog.StackFrontend, remotelog.LevelInfo, remotelog.PackageAPI, "msg")

	assert.Equal(t, int64(1), requests.Load())
}

// TestClient_AbsorbsServerError проверяет, что не-200 ответ не паникует
// и не возвращается вызывающему коду
func TestClient_AbsorbsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := remotelog.NewClient(server.URL, "token", nil)

	assert.NotPanics(t, func() {
		client.Log(context.Background(), remotelog.StackBackend, remotelog.LevelError, remotelog.PackageDB, "msg")
	})
}

// TestClient_AbsorbsUnreachableEndpoint проверяет поведение при недоступном сервисе
func TestClient_AbsorbsUnreachableEndpoint(t *testing.T) {
	client := remotelog.NewClient("http://127.0.0.1:1", "token", nil)

	assert.NotPanics(t, func() {
		client.Log(context.Background(), remotelog.StackBackend, remotelog.LevelError, remotelog.PackageDB, "msg")
	})
}

// TestClient_Shortcuts проверяет шорткаты уровней для backend-стека
func TestClient_Shortcuts(t *testing.T) {
	var events []remotelog.Event

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e remotelog.Event
		json.NewDecoder(r.Body).Decode(&e)
		events = append(events, e)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := remotelog.NewClient(server.URL, "token", nil)
	ctx := context.Background()

	client.Debug(ctx, remotelog.PackageService, "d")
	client.Info(ctx, remotelog.PackageService, "i")
	client.Warn(ctx, remotelog.PackageService, "w")
	client.Error(ctx, remotelog.PackageService, "e")
	client.Fatal(ctx, remotelog.PackageService, "f")

	require.Len(t, events, 5)
	levels := []string{"debug", "info", "warn", "error", "fatal"}
	for i, e := range events {
		assert.Equal(t, "backend", e.Stack)
		assert.Equal(t, levels[i], e.Level)
		assert.Equal(t, "service", e.Package)
	}
}

// TestMemorySink проверяет накопление и нормализацию событий
func TestMemorySink(t *testing.T) {
	sink := remotelog.NewMemorySink()

	sink.Log(context.Background(), "Backend", "INFO", "Service", "first")
	sink.Log(context.Background(), remotelog.StackBackend, remotelog.LevelError, remotelog.PackageDB, "second")

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, remotelog.Event{Stack: "backend", Level: "info", Package: "service", Message: "first"}, events[0])
	assert.Equal(t, remotelog.Event{Stack: "backend", Level: "error", Package: "db", Message: "second"}, events[1])

	sink.Reset()
	assert.Empty(t, sink.Events())
}
