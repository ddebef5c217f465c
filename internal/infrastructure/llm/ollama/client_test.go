package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/projectscope/estimation-service/internal/infrastructure/resilience"
)

func TestInvokeSendsSystemAndPrompt(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"  {\"ok\":true}  "}`))
	}))
	defer server.Close()

	client := New(server.URL, "llama3")
	got, err := client.Invoke(context.Background(), "you are an analyst", "analyze this")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != `{"ok":true}` {
		t.Fatalf("response not trimmed: %q", got)
	}
	if captured["model"] != "llama3" {
		t.Errorf("model = %v", captured["model"])
	}
	if captured["system"] != "you are an analyst" {
		t.Errorf("system = %v", captured["system"])
	}
	if captured["prompt"] != "analyze this" {
		t.Errorf("prompt = %v", captured["prompt"])
	}
	if captured["stream"] != false {
		t.Errorf("stream = %v", captured["stream"])
	}
}

func TestInvokeIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, "llama3")
	_, err := client.Invoke(context.Background(), "sys", "prompt")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestInvokeSurfacesQuotaStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New(server.URL, "llama3")
	_, err := client.Invoke(context.Background(), "sys", "prompt")
	if err == nil {
		t.Fatalf("expected error")
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", statusErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error text should carry the status for quota detection: %v", err)
	}
}

func TestInvokeRetriesThroughExecutor(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: 2,
		BreakerEnabled:   false,
	})
	client := New(server.URL, "llama3", WithExecutor(executor))
	got, err := client.Invoke(context.Background(), "sys", "prompt")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != "ok" {
		t.Fatalf("response = %q", got)
	}
	if calls != 2 {
		t.Fatalf("expected one retry, got %d calls", calls)
	}
}

func TestInvokeDoesNotRetryQuota(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: 3,
		BreakerEnabled:   false,
	})
	client := New(server.URL, "llama3", WithExecutor(executor))
	if _, err := client.Invoke(context.Background(), "sys", "prompt"); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("quota responses must not be retried, got %d calls", calls)
	}
}
