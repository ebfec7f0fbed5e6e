package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"research-portal/internal/common"
	"research-portal/internal/llm"
)

// Submit implements llm.DocumentSubmitter against the Anthropic messages API.
// The PDF rides along as a base64 document block ahead of the instruction
// text, and the raw completion text comes back untouched. Normalization and
// validation belong to the caller.
func (c *Client) Submit(ctx context.Context, req llm.SubmitRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.submit.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"task", string(req.Task),
		"variant", string(req.Variant),
		"document_bytes", len(req.Document),
		"filename", req.Filename,
	)

	body := map[string]any{
		"model":      c.cfg.Model,
		"max_tokens": c.cfg.MaxTokens,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type": "document",
						"source": map[string]any{
							"type":       "base64",
							"media_type": "application/pdf",
							"data":       base64.StdEncoding.EncodeToString(req.Document),
						},
					},
					{
						"type": "text",
						"text": req.Prompt,
					},
				},
			},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/messages"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("llm.submit.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var msg struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.log.Error("llm.submit.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: decode messages response: %v", common.ErrTransport, err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		c.log.Error("llm.submit.empty_content",
			"req_id", rid, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: no text content in messages response", common.ErrTransport)
	}

	c.log.Info("llm.submit.ok",
		"req_id", rid,
		"response_chars", text.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text.String(), nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", common.ErrTransport, err)
	}
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("anthropic response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: anthropic status %d: %s", common.ErrTransport, resp.StatusCode, summarizeAPIError(raw))
	}
	return raw, nil
}

// summarizeAPIError pulls the provider's error message out of an error body,
// falling back to a truncated raw dump.
func summarizeAPIError(raw []byte) string {
	var e struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &e); err == nil && e.Error.Message != "" {
		return e.Error.Type + ": " + e.Error.Message
	}
	s := string(raw)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
