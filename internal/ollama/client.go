package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"builtwith/internal/builtwith"
	"builtwith/internal/config"
)

var (
	// ErrUnavailable means the chat service could not be reached at all.
	ErrUnavailable = errors.New("ollama is not reachable")
	// ErrModel means the service answered with an error payload, typically
	// because the model has not been pulled.
	ErrModel = errors.New("ollama response error")
)

const promptPrefix = "Analyze the following BuiltWith result and provide insights:\n\n"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Model         string  `json:"model"`
	Message       Message `json:"message"`
	Done          bool    `json:"done"`
	DoneReason    string  `json:"done_reason,omitempty"`
	TotalDuration int64   `json:"total_duration,omitempty"`
	EvalCount     int     `json:"eval_count,omitempty"`
	Error         string  `json:"error,omitempty"`
}

type Client struct {
	host       string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		host:       normalizeHost(cfg.OllamaHost),
		httpClient: &http.Client{Timeout: time.Duration(cfg.OllamaTimeoutMs) * time.Millisecond},
		logger:     logger,
	}
}

// BuildPrompt embeds the whole profile, indented, in the analysis prompt.
func BuildPrompt(profile builtwith.Profile) string {
	return promptPrefix + strings.TrimRight(string(profile.Pretty()), "\n") + "."
}

// Chat sends prompt as a single user message and waits for the full reply.
func (c *Client) Chat(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.post(ctx, model, prompt, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "failed to decode ollama response")
	}
	if out.Error != "" {
		return "", errors.Wrap(ErrModel, out.Error)
	}
	c.logger.Debug("ollama chat done",
		zap.String("model", model),
		zap.Int("evalCount", out.EvalCount),
		zap.Duration("total", time.Duration(out.TotalDuration)))
	return out.Message.Content, nil
}

// ChatStream is Chat with stream enabled. onToken sees every fragment in
// arrival order; the returned text is their concatenation. On error the text
// received so far is returned with it and must not be treated as an answer.
func (c *Client) ChatStream(ctx context.Context, model, prompt string, onToken func(string)) (string, error) {
	resp, err := c.post(ctx, model, prompt, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk chatResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			return full.String(), errors.Wrap(err, "failed to decode ollama stream chunk")
		}
		if chunk.Error != "" {
			return full.String(), errors.Wrap(ErrModel, chunk.Error)
		}
		if chunk.Message.Content != "" {
			full.WriteString(chunk.Message.Content)
			if onToken != nil {
				onToken(chunk.Message.Content)
			}
		}
		if chunk.Done {
			c.logger.Debug("ollama stream done",
				zap.String("model", model),
				zap.String("reason", chunk.DoneReason),
				zap.Int("evalCount", chunk.EvalCount))
			return full.String(), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), c.transportError(ctx, err, model)
	}
	return full.String(), nil
}

func (c *Client) post(ctx context.Context, model, prompt string, stream bool) (*http.Response, error) {
	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: []Message{{Role: "user", Content: prompt}},
		Stream:   stream,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("ollama chat", zap.String("host", c.host), zap.String("model", model), zap.Bool("stream", stream), zap.Int("promptBytes", len(prompt)))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err, model)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		var payload chatResponse
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			return nil, errors.Wrapf(ErrModel, "%s (status %d)", payload.Error, resp.StatusCode)
		}
		return nil, errors.Wrapf(ErrModel, "status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return resp, nil
}

func (c *Client) transportError(ctx context.Context, err error, model string) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return errors.Wrap(ctx.Err(), "ollama request")
	}
	return errors.Wrapf(ErrUnavailable, "%v. Make sure Ollama is running and the model '%s' is available", err, model)
}

// normalizeHost accepts OLLAMA_HOST values with or without a scheme.
func normalizeHost(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return config.DefaultOllamaHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host
}
