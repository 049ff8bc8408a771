package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/warmup/internal/config"
	"github.com/customeros/warmup/internal/tracing"
	"github.com/customeros/warmup/interfaces"
)

type outboundRequest struct {
	SenderName    string `json:"senderName"`
	RecipientName string `json:"recipientName"`
	SenderAddress string `json:"senderAddress"`
}

type replyRequest struct {
	ReplierName       string `json:"replierName"`
	OriginalSenderName string `json:"originalSenderName"`
	OriginalSubject   string `json:"originalSubject"`
	OriginalBody      string `json:"originalBody"`
}

type generatedResponse struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Client calls a configured HTTP endpoint to generate warm-up copy.
type Client struct {
	config *config.TextGenConfig
	http   *http.Client
}

func NewClient(cfg *config.TextGenConfig) interfaces.TextGenerator {
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Outbound(ctx context.Context, senderName, recipientName, senderAddress string) (string, string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "textgen.Client.Outbound")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	return c.generate(ctx, "/v1/outbound", outboundRequest{
		SenderName:    senderName,
		RecipientName: recipientName,
		SenderAddress: senderAddress,
	})
}

func (c *Client) Reply(ctx context.Context, replierName, originalSenderName, originalSubject, originalBody string) (string, string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "textgen.Client.Reply")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	return c.generate(ctx, "/v1/reply", replyRequest{
		ReplierName:        replierName,
		OriginalSenderName: originalSenderName,
		OriginalSubject:    originalSubject,
		OriginalBody:       originalBody,
	})
}

func (c *Client) generate(ctx context.Context, path string, payload interface{}) (string, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.Endpoint+path, bytes.NewBuffer(body))
	if err != nil {
		return "", "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", errors.Wrap(err, "text generation request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", errors.Wrap(err, "unable to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("text generation request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var generated generatedResponse
	if err := json.Unmarshal(respBody, &generated); err != nil {
		return "", "", fmt.Errorf("failed to unmarshal text generation response: %w", err)
	}

	return generated.Subject, generated.Body, nil
}
