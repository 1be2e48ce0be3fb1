// Package publish announces finished runs.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/lixenwraith/redking/parameter"
)

// Publisher posts a message with an attached image
type Publisher interface {
	Publish(ctx context.Context, message, imagePath string) error
}

// LogPublisher only logs; the default when no endpoint is configured
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{log: logger}
}

func (p *LogPublisher) Publish(_ context.Context, message, imagePath string) error {
	p.log.Info("publish", zap.String("message", message), zap.String("image", imagePath))
	return nil
}

// WebhookPublisher posts multipart form data with a "status" field and a "media" file
// Network errors and 5xx responses are retried with exponential backoff
type WebhookPublisher struct {
	URL             string
	Client          *http.Client
	MaxTries        uint
	InitialInterval time.Duration

	log *zap.Logger
}

func NewWebhookPublisher(url string, logger *zap.Logger) *WebhookPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookPublisher{
		URL:             url,
		Client:          &http.Client{Timeout: parameter.PublishTimeout},
		MaxTries:        parameter.PublishMaxAttempts,
		InitialInterval: 500 * time.Millisecond,
		log:             logger,
	}
}

func (p *WebhookPublisher) Publish(ctx context.Context, message, imagePath string) error {
	body, contentType, err := buildForm(message, imagePath)
	if err != nil {
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval

	attempt := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := p.post(ctx, body, contentType)
		if err != nil {
			p.log.Debug("publish attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(p.MaxTries))
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.URL, err)
	}
	return nil
}

func (p *WebhookPublisher) post(ctx context.Context, body []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("server error: %s", resp.Status)
	case resp.StatusCode >= 300:
		return backoff.Permanent(fmt.Errorf("rejected: %s", resp.Status))
	}
	return nil
}

// buildForm encodes the request once so retries resend identical bytes
func buildForm(message, imagePath string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("status", message); err != nil {
		return nil, "", err
	}

	if imagePath != "" {
		f, err := os.Open(imagePath)
		if err != nil {
			return nil, "", fmt.Errorf("open image: %w", err)
		}
		defer f.Close()

		part, err := w.CreateFormFile("media", filepath.Base(imagePath))
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, "", fmt.Errorf("read image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
