package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ChunkHandler receives each content delta as it arrives. Returning an error
// aborts the stream.
type ChunkHandler func(chunk string) error

const (
	sseDataPrefix   = "data:"
	sseDoneSentinel = "[DONE]"
	maxSSELineBytes = 1 << 20
)

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

// Stream sends the conversation with streaming enabled and forwards content
// deltas to onChunk. It returns the concatenated reply. Failures before the
// first delta are retried like Complete; once content has been delivered the
// error is returned as-is so callers never see duplicated text.
func (c *Client) Stream(ctx context.Context, messages []Message, onChunk ChunkHandler) (string, error) {
	const op = "llm stream"
	if err := c.validate(op, messages); err != nil {
		return "", err
	}
	payload := chatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   true,
	}

	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		content, delivered, err := c.streamOnce(ctx, payload, onChunk)
		if err == nil && strings.TrimSpace(content) != "" {
			return content, nil
		}
		if err == nil {
			err = &emptyContentError{Op: op, Snippet: "<empty stream>"}
		}
		if delivered {
			return content, err
		}
		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return "", err
		}
		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) streamOnce(ctx context.Context, payload chatCompletionRequest, onChunk ChunkHandler) (string, bool, error) {
	resp, err := c.do(ctx, payload)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()
	return readEventStream(resp.Body, onChunk)
}

// readEventStream consumes server-sent events until [DONE] or EOF.
func readEventStream(r io.Reader, onChunk ChunkHandler) (string, bool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxSSELineBytes)

	var builder strings.Builder
	delivered := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		data, ok := strings.CutPrefix(line, sseDataPrefix)
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == sseDoneSentinel {
			return builder.String(), delivered, nil
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return builder.String(), delivered, fmt.Errorf("llm stream: decode event: %w (snippet: %s)", err, summarizePayloadSnippet(data))
		}
		if chunk.Error != nil {
			return builder.String(), delivered, fmt.Errorf("llm stream: api error: %s", strings.TrimSpace(chunk.Error.Message))
		}
		for _, choice := range chunk.Choices {
			delta := choice.Delta.Content
			if delta == "" {
				continue
			}
			builder.WriteString(delta)
			delivered = true
			if onChunk != nil {
				if err := onChunk(delta); err != nil {
					return builder.String(), delivered, fmt.Errorf("llm stream: chunk handler: %w", err)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return builder.String(), delivered, fmt.Errorf("llm stream: read events: %w", err)
	}
	return builder.String(), delivered, nil
}
