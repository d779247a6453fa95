package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/esaha/esaha-backend/internal/httpx"
	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/utils"
)

// Client sends transactional email through the SendGrid v3 mail API.
type Client interface {
	Send(ctx context.Context, req SendEmailRequest) error
}

type SendEmailRequest struct {
	To          string
	Subject     string
	HTMLContent string
	TextContent string
}

type Config struct {
	APIKey     string
	BaseURL    string
	FromEmail  string
	FromName   string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	timeoutSec := utils.GetEnvAsInt("SENDGRID_TIMEOUT_SECONDS", 30, nil)
	maxRetries := utils.GetEnvAsInt("SENDGRID_MAX_RETRIES", 4, nil)

	return Config{
		APIKey:     strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")),
		BaseURL:    strings.TrimSpace(os.Getenv("SENDGRID_BASE_URL")),
		FromEmail:  strings.TrimSpace(os.Getenv("SENDGRID_FROM_EMAIL")),
		FromName:   strings.TrimSpace(os.Getenv("SENDGRID_FROM_NAME")),
		Timeout:    time.Duration(timeoutSec) * time.Second,
		MaxRetries: maxRetries,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing SENDGRID_API_KEY")
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("missing SENDGRID_FROM_EMAIL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.FromName == "" {
		cfg.FromName = "eSaha"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 4
	}

	return &client{
		log:        log.With("client", "SendGridClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailSendRequest struct {
	Personalizations []struct {
		To []mailAddress `json:"to"`
	} `json:"personalizations"`
	From    mailAddress   `json:"from"`
	Subject string        `json:"subject"`
	Content []mailContent `json:"content"`
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) error {
	req.To = strings.TrimSpace(req.To)
	req.Subject = strings.TrimSpace(req.Subject)
	if req.To == "" {
		return fmt.Errorf("sendgrid: To required")
	}
	if req.Subject == "" {
		return fmt.Errorf("sendgrid: Subject required")
	}
	if strings.TrimSpace(req.HTMLContent) == "" && strings.TrimSpace(req.TextContent) == "" {
		return fmt.Errorf("sendgrid: content required")
	}

	body := mailSendRequest{
		From:    mailAddress{Email: c.cfg.FromEmail, Name: c.cfg.FromName},
		Subject: req.Subject,
	}
	body.Personalizations = append(body.Personalizations, struct {
		To []mailAddress `json:"to"`
	}{To: []mailAddress{{Email: req.To}}})

	if strings.TrimSpace(req.TextContent) != "" {
		body.Content = append(body.Content, mailContent{Type: "text/plain", Value: req.TextContent})
	}
	if strings.TrimSpace(req.HTMLContent) != "" {
		body.Content = append(body.Content, mailContent{Type: "text/html", Value: req.HTMLContent})
	}

	backoff := 1 * time.Second
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, err := c.sendOnce(ctx, body)
		if err == nil {
			return nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.cfg.MaxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("SendGrid request retrying",
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

func (c *client) sendOnce(ctx context.Context, body mailSendRequest) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/v3/mail/send", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return resp, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, nil
}
