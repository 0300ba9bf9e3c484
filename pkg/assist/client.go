package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/craftfolio/craftfolio-api/pkg/apperr"
)

// ErrGenerationFailed is the single client-facing failure for AI assist.
var ErrGenerationFailed = apperr.New(apperr.Internal, "suggestion generation failed")

// Client talks to an Ollama-compatible chat endpoint and extracts the JSON
// object the prompts ask the model to produce.
type Client struct {
	URL     string
	Model   string
	httpc   *http.Client
	timeout time.Duration
}

func NewClient(url, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		URL:     url,
		Model:   model,
		httpc:   &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
	Messages []chatMessage `json:"messages"`
	Options  chatOptions   `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// Generate sends the prompt and returns the raw JSON object from the reply.
func (c *Client) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.Model,
		Stream:   false,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Options:  chatOptions{NumPredict: 500, Temperature: 0.4},
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, ErrGenerationFailed.Message, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, ErrGenerationFailed.Message, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, ErrGenerationFailed.Message, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Wrap(apperr.Internal, ErrGenerationFailed.Message, fmt.Errorf("assist endpoint status %d", resp.StatusCode))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, apperr.Wrap(apperr.Internal, ErrGenerationFailed.Message, err)
	}
	return ExtractJSON(cr.Message.Content)
}

// ExtractJSON pulls the first JSON object out of a model reply, tolerating
// markdown code fences and prose around the object.
func ExtractJSON(raw string) (json.RawMessage, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")
	match := jsonObjectRe.FindString(raw)
	if match == "" {
		return nil, apperr.Wrap(apperr.Internal, ErrGenerationFailed.Message, fmt.Errorf("no JSON object in model reply"))
	}
	if !json.Valid([]byte(match)) {
		return nil, apperr.Wrap(apperr.Internal, ErrGenerationFailed.Message, fmt.Errorf("model reply is not valid JSON"))
	}
	return json.RawMessage(match), nil
}
