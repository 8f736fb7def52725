package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const defaultModel = "gemini-3-flash-preview"

// ErrBreakerOpen is returned without touching the network while the endpoint
// is considered down. Callers treat it like any other failure and fall back.
var ErrBreakerOpen = errors.New("ai: circuit breaker open")

// Client talks to a Gemini-style generateContent endpoint and implements
// both Analyzer and Synthesizer. Every call is guarded by the breaker; a
// failed or slow call only delays the credit path, it never corrupts it.
type Client struct {
	log        *slog.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	breaker    *Breaker
}

func NewClient(log *slog.Logger, baseURL, apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		log:        log,
		httpClient: newHTTPClient(),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		breaker:    NewBreaker(),
	}
}

// newHTTPClient mirrors the pooling/timeout discipline we use for every
// third-party HTTP dependency.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

const analyzePrompt = "Analyze this image for quality and content. Confirm its validity. " +
	"Provide professional, encouraging feedback in fluent English. Every valid upload earns ₹2.00. " +
	"Return JSON with 'reward' (fixed at 2) and 'feedback'."

func (c *Client) AnalyzePhoto(ctx context.Context, image []byte) (Analysis, error) {
	parts := []part{
		{InlineData: &inlineData{MimeType: "image/jpeg", Data: base64.StdEncoding.EncodeToString(image)}},
		{Text: analyzePrompt},
	}

	var out Analysis
	if err := c.generateJSON(ctx, parts, &out); err != nil {
		return Analysis{}, err
	}
	if out.Feedback == "" {
		return Analysis{}, errors.New("ai: empty feedback in analysis response")
	}
	return out, nil
}

func (c *Client) GenerateVoucher(ctx context.Context, prompt string) (Voucher, error) {
	text := fmt.Sprintf("You are a professional network assistant. A user requires a data voucher code. "+
		"User Prompt: %s. Generate a unique 12-digit alphanumeric code prefixed with 'BING-'. "+
		"Specify a data allocation (e.g., 1GB, 5GB). Return as JSON with 'code' and 'dataAmount'.", prompt)

	var out Voucher
	if err := c.generateJSON(ctx, []part{{Text: text}}, &out); err != nil {
		return Voucher{}, err
	}
	if out.Code == "" {
		return Voucher{}, errors.New("ai: empty code in synthesis response")
	}
	return out, nil
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type generateRequest struct {
	Contents []struct {
		Parts []part `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string `json:"response_mime_type"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generateJSON performs one generateContent call and unmarshals the model's
// JSON text answer into target.
func (c *Client) generateJSON(ctx context.Context, parts []part, target any) error {
	if !c.breaker.Allow() {
		return ErrBreakerOpen
	}

	var reqBody generateRequest
	reqBody.Contents = make([]struct {
		Parts []part `json:"parts"`
	}, 1)
	reqBody.Contents[0].Parts = parts
	reqBody.GenerationConfig.ResponseMimeType = "application/json"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return fmt.Errorf("generate call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.breaker.RecordFailure()
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.breaker.RecordFailure()
		c.log.Warn("ai_call_failed", "status", resp.StatusCode, "breaker", c.breaker.StateString())
		return fmt.Errorf("generate call: status %d", resp.StatusCode)
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		c.breaker.RecordFailure()
		return fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		c.breaker.RecordFailure()
		return errors.New("ai: no candidates in response")
	}

	if err := json.Unmarshal([]byte(gr.Candidates[0].Content.Parts[0].Text), target); err != nil {
		c.breaker.RecordFailure()
		return fmt.Errorf("decode model json: %w", err)
	}

	c.breaker.RecordSuccess()
	return nil
}
