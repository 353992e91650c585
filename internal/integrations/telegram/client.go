package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"glock/internal/domain"
	"glock/internal/integrations/paramstore"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	callTimeout    = 10 * time.Second
)

// APIError captures a failed Bot API call: a non-2xx status or an ok:false envelope.
type APIError struct {
	Method      string
	StatusCode  int
	Description string
	RetryAfter  int
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("telegram: %s: unexpected status %d", e.Method, e.StatusCode)
	}
	return fmt.Sprintf("telegram: %s: %d %s", e.Method, e.StatusCode, e.Description)
}

func (e *APIError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a focused Bot API client covering the methods the bot calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter

	getter     paramstore.Getter
	tokenParam string

	tokenOnce sync.Once
	token     string
	tokenErr  error
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sets a static bot token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithParamStoreToken reads the bot token from SSM on the first call.
func WithParamStoreToken(getter paramstore.Getter, name string) Option {
	return func(c *Client) {
		c.getter = getter
		c.tokenParam = strings.TrimSpace(name)
	}
}

// WithRateLimit caps outbound calls per second. Zero or less disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a Client. Exactly one token source is required: a static
// token, or a paramstore getter with a parameter name.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	switch {
	case c.token != "" && c.getter != nil:
		return nil, errors.New("telegram: both a static token and a token parameter were given")
	case c.token == "" && c.getter == nil:
		return nil, errors.New("telegram: a bot token is required")
	case c.getter != nil && c.tokenParam == "":
		return nil, errors.New("telegram: token parameter name must not be empty")
	}
	return c, nil
}

// resolveToken fetches the token from SSM on the first call and returns the
// cached result on every subsequent call within the same process lifetime.
func (c *Client) resolveToken(ctx context.Context) (string, error) {
	c.tokenOnce.Do(func() {
		if c.token != "" {
			return
		}
		c.token, c.tokenErr = paramstore.Token(ctx, c.getter, c.tokenParam)
	})
	return c.token, c.tokenErr
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 90 * time.Second}
}

func methodURL(baseURL, token, method string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base + "/bot" + token + "/" + method
}

// GetMe returns the bot's own user.
func (c *Client) GetMe(ctx context.Context) (User, error) {
	var me User
	if err := c.call(ctx, "getMe", struct{}{}, &me); err != nil {
		return User{}, err
	}
	return me, nil
}

// GetUpdates long-polls for updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	var updates []Update
	req := getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(timeout / time.Second),
		AllowedUpdates: []string{"message", "channel_post"},
	}
	if err := c.call(ctx, "getUpdates", req, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage posts text silently, replying to replyToID when it is non-zero.
// It returns the id of the sent message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, replyToID int64) (int64, error) {
	req := sendMessageRequest{ChatID: chatID, Text: text, DisableNotification: true}
	if replyToID != 0 {
		req.ReplyParameters = &replyParameters{MessageID: replyToID, AllowSendingWithoutReply: true}
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var sent Message
	if err := c.call(ctx, "sendMessage", req, &sent); err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return c.call(ctx, "deleteMessage", deleteMessageRequest{ChatID: chatID, MessageID: messageID}, nil)
}

// RestrictMember applies perms to userID until the given instant. A zero
// until restricts forever.
func (c *Client) RestrictMember(ctx context.Context, chatID, userID int64, perms domain.Permissions, until time.Time) error {
	req := restrictChatMemberRequest{
		ChatID:      chatID,
		UserID:      userID,
		Permissions: permissionsFrom(perms),
	}
	if !until.IsZero() {
		req.UntilDate = until.Unix()
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return c.call(ctx, "restrictChatMember", req, nil)
}

// RestorePermissions gives userID every member permission back.
func (c *Client) RestorePermissions(ctx context.Context, chatID, userID int64) error {
	return c.RestrictMember(ctx, chatID, userID, domain.FullPermissions, time.Time{})
}

func (c *Client) call(ctx context.Context, method string, params, out any) error {
	token, err := c.resolveToken(ctx)
	if err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram: %s: rate limit: %w", method, err)
	}

	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("telegram: %s: marshal request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, methodURL(c.baseURL, token, method), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: %s: create request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.doJSONRequest(req, method)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("telegram: %s: decode result: %w", method, err)
	}
	return nil
}

// doJSONRequest executes req and returns the envelope's result. The URL holds
// the token, so errors only name the method.
func (c *Client) doJSONRequest(req *http.Request, method string) (json.RawMessage, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		var urlErr *url.Error
		if errors.As(doErr, &urlErr) {
			doErr = urlErr.Err
		}
		return nil, fmt.Errorf("telegram: %s: request failed: %w", method, doErr)
	}
	defer func() { _ = res.Body.Close() }()

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("telegram: %s: read response body: %w", method, err)
	}

	var envelope apiResponse
	decErr := json.Unmarshal(buf, &envelope)
	if res.StatusCode < 200 || res.StatusCode >= 300 || decErr != nil || !envelope.OK {
		apiErr := &APIError{Method: method, StatusCode: res.StatusCode}
		if decErr == nil {
			apiErr.Description = envelope.Description
			if envelope.Parameters != nil {
				apiErr.RetryAfter = envelope.Parameters.RetryAfter
			}
		} else if res.StatusCode >= 200 && res.StatusCode < 300 {
			return nil, fmt.Errorf("telegram: %s: decode response: %w", method, decErr)
		}
		return nil, apiErr
	}
	return envelope.Result, nil
}
