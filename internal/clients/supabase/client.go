package supabase

import (
	"context"
	"encoding/json"
	"errors"
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

// ErrInvalidToken is returned when Supabase rejects the access token.
var ErrInvalidToken = errors.New("supabase: invalid or expired token")

// User is the subset of the Supabase auth user record the backend cares about.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Client verifies Supabase access tokens against the auth user endpoint.
type Client interface {
	GetUser(ctx context.Context, accessToken string) (*User, error)
}

type Config struct {
	URL        string
	AnonKey    string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	timeoutSec := utils.GetEnvAsInt("SUPABASE_TIMEOUT_SECONDS", 10, nil)
	maxRetries := utils.GetEnvAsInt("SUPABASE_MAX_RETRIES", 2, nil)

	return Config{
		URL:        strings.TrimSpace(os.Getenv("SUPABASE_URL")),
		AnonKey:    strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY")),
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
	if cfg.URL == "" {
		return nil, fmt.Errorf("missing SUPABASE_URL")
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("missing SUPABASE_ANON_KEY")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &client{
		log:        log.With("client", "SupabaseClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type supabaseHTTPError struct {
	StatusCode int
	Body       string
}

func (e *supabaseHTTPError) Error() string {
	return fmt.Sprintf("supabase http %d: %s", e.StatusCode, e.Body)
}

func (e *supabaseHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, ErrInvalidToken
	}

	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		user, resp, err := c.getUserOnce(ctx, accessToken)
		if err == nil {
			return user, nil
		}
		if errors.Is(err, ErrInvalidToken) {
			return nil, err
		}

		if !httpx.IsRetryableError(err) || attempt == c.cfg.MaxRetries {
			return nil, err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 5*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("Supabase user lookup retrying",
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return nil, fmt.Errorf("unreachable retry loop")
}

func (c *client) getUserOnce(ctx context.Context, accessToken string) (*User, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.cfg.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", c.cfg.AnonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resp, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, resp, ErrInvalidToken
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, &supabaseHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, resp, fmt.Errorf("supabase decode error: %w; raw=%s", err, string(raw))
	}
	if strings.TrimSpace(user.ID) == "" {
		return nil, resp, ErrInvalidToken
	}
	return &user, resp, nil
}
