package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const sampleReply = `## Overall Theme
Found families and long journeys.

## Top Recommendations
1. Cowboy Bebop (1998) - a space western classic
Genre: Sci-Fi, Noir
Type: Anime
Description: Bounty hunters drift through a jazz-soaked solar system.
Why You'll Love It: Every episode has style to spare.

2. Vinland Saga (2019)
Genre: Historical
Description: A young warrior grows past revenge.

## Hidden Gems
1. Haibane Renmei (2002)
Genre: Drama
A quiet story about grace and belonging.

## Where to Watch/Read
Crunchyroll and Netflix stream most of these.`

// fakeLLM answers chat-completions requests: guide turns get a short reply,
// the recommendation request gets sampleReply.
type fakeLLM struct {
	mu       sync.Mutex
	requests []fakeRequest
	server   *httptest.Server
}

type fakeRequest struct {
	Stream   bool `json:"stream"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

func newFakeLLM(t *testing.T) *fakeLLM {
	t.Helper()
	f := &fakeLLM{}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeLLM) handle(w http.ResponseWriter, r *http.Request) {
	var req fakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	reply := "Sugoi! Have you tried Mushishi?"
	switch {
	case req.ResponseFormat != nil:
		reply = `{"ok":true}`
	case len(req.Messages) > 0 && strings.Contains(req.Messages[0].Content, "recommendation specialist"):
		reply = sampleReply
	}

	if req.Stream {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range strings.SplitAfter(reply, " ") {
			payload, _ := json.Marshal(map[string]any{
				"choices": []any{map[string]any{"delta": map[string]any{"content": part}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": reply}}},
	})
}

func (f *fakeLLM) requestCount() (total, streamed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.requests {
		if req.Stream {
			streamed++
		}
	}
	return len(f.requests), streamed
}

// isolateHome points HOME and the working directory at a temp dir and clears
// credential env vars so the developer's own config never leaks in.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPEN_API_KEY", "")
	t.Setenv("ANIMEVERSE_API_TOKEN", "")
	t.Chdir(home)
	return home
}

func writeTestConfig(t *testing.T, dir, baseURL, apiKey string) string {
	t.Helper()
	path := filepath.Join(dir, "animeverse-test.toml")
	content := fmt.Sprintf("[llm]\napi_key = %q\nbase_url = %q\n\n[logging]\nlevel = \"error\"\n", apiKey, baseURL)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, stdin, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
