package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func writeCompletion(t *testing.T, w http.ResponseWriter, choice map[string]any) {
	t.Helper()
	payload := map[string]any{"choices": []any{choice}}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestClientCompleteSendsHistory(t *testing.T) {
	var got chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if title := r.Header.Get("X-Title"); title != "AnimeVerse Guide" {
			t.Errorf("unexpected title header %q", title)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeCompletion(t, w, map[string]any{
			"message": map[string]any{"content": "  Konnichiwa! Try Mushishi.  "},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Title: "AnimeVerse Guide"})
	reply, err := client.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "You are a guide."},
		{Role: RoleUser, Content: "I like calm shows."},
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if reply != "Konnichiwa! Try Mushishi." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if got.Model != "gpt-4o" {
		t.Fatalf("expected default model, got %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[1].Content != "I like calm shows." {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
	if got.Stream || got.ResponseFormat != nil || got.Temperature != nil {
		t.Fatalf("expected plain completion request, got %+v", got)
	}
}

func TestClientCompleteRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected missing api key error, got %v", err)
	}
	if _, err := client.Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty history")
	}
}

func TestClientWithModelOverride(t *testing.T) {
	client := NewClient(Config{APIKey: "k", Model: "gpt-4o"}, WithModel("gpt-4o-mini"))
	if client.Model() != "gpt-4o-mini" {
		t.Fatalf("unexpected model %q", client.Model())
	}
	client = NewClient(Config{APIKey: "k", Model: "custom"}, WithModel("  "))
	if client.Model() != "custom" {
		t.Fatalf("blank override should keep configured model, got %q", client.Model())
	}
}

func TestClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeCompletion(t, w, map[string]any{
			"message": map[string]any{"content": "```json\n{\"ok\":true}\n```"},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"})
	err := client.HealthCheck(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}
}

func TestClientCompleteDeltaAndLegacyText(t *testing.T) {
	for name, choice := range map[string]map[string]any{
		"delta": {"delta": map[string]any{"content": "from delta"}},
		"text":  {"text": "from text"},
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeCompletion(t, w, choice)
			}))
			defer server.Close()

			client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
			reply, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
			if err != nil {
				t.Fatalf("Complete returned error: %v", err)
			}
			if reply != "from "+name {
				t.Fatalf("unexpected reply %q", reply)
			}
		})
	}
}

func TestClientEmptyContentHasSnippet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(t, w, map[string]any{
			"finish_reason": "content_filter",
			"message":       map[string]any{"content": "", "refusal": "nope"},
		})
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithRetryMaxAttempts(1),
	)
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if !IsEmptyContent(err) {
		t.Fatalf("expected empty content error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"content_filter", "nope", "response_snippet="} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in %q", fragment, msg)
		}
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
			return
		}
		writeCompletion(t, w, map[string]any{"message": map[string]any{"content": "ok"}})
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	reply, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if reply != "ok" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientRetriesOnEmptyContentThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		content := ""
		if calls >= 3 {
			content = "finally"
		}
		writeCompletion(t, w, map[string]any{
			"finish_reason": "stop",
			"message":       map[string]any{"content": content},
		})
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(5),
	)
	reply, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if reply != "finally" || calls != 3 {
		t.Fatalf("unexpected reply %q after %d calls", reply, calls)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(4),
	)
	if _, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestBackoffDelayDoublesAndCaps(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 5*time.Second))
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	for i, expected := range want {
		if got := client.backoffDelay(i + 1); got != expected {
			t.Fatalf("attempt %d: expected %s, got %s", i+1, expected, got)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("unexpected seconds parse %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative values should be rejected")
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("garbage should be rejected")
	}
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	if d, ok := parseRetryAfter(future); !ok || d <= 0 {
		t.Fatalf("unexpected date parse %v %v", d, ok)
	}
}

func TestNewRateLimiter(t *testing.T) {
	if NewRateLimiter(0) != nil {
		t.Fatal("expected nil limiter when disabled")
	}
	limiter := NewRateLimiter(60)
	if limiter == nil {
		t.Fatal("expected limiter")
	}
	if limiter.Limit() != 1 {
		t.Fatalf("expected 1 request per second, got %v", limiter.Limit())
	}
	if limiter.Burst() != 1 {
		t.Fatalf("expected burst 1, got %d", limiter.Burst())
	}
}

func TestClientRateLimiterHonoursContext(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeCompletion(t, w, map[string]any{"message": map[string]any{"content": "ok"}})
	}))
	defer server.Close()

	limiter := NewRateLimiter(1)
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL}, WithRateLimiter(limiter))
	msgs := []Message{{Role: RoleUser, Content: "hi"}}
	if _, err := client.Complete(context.Background(), msgs); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.Complete(ctx, msgs); err == nil {
		t.Fatal("expected limiter wait to fail within the deadline")
	}
	if calls != 1 {
		t.Fatalf("expected limiter to block the second request, got %d calls", calls)
	}
}

func TestDecodeLLMJSONExtractsObject(t *testing.T) {
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON("Sure! {\"ok\": true} hope that helps", &parsed); err != nil {
		t.Fatalf("DecodeLLMJSON returned error: %v", err)
	}
	if !parsed.OK {
		t.Fatal("expected ok=true")
	}
	if err := DecodeLLMJSON("   ", &parsed); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
