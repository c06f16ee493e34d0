package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/nikbrowser/nikbrowser/internal/client/models"
	"github.com/nikbrowser/nikbrowser/internal/common"
	"github.com/nikbrowser/nikbrowser/internal/logging"
	"github.com/nikbrowser/nikbrowser/internal/netx"
	"github.com/nikbrowser/nikbrowser/internal/timex"
)

// Endpoints are the collaborator base URLs.
type Endpoints struct {
	Auth      string
	History   string
	Mail      string
	Downloads string
}

type Options struct {
	Endpoints Endpoints
	Timeout   time.Duration
	RetryMax  int
	// RateLimit is requests per second; zero or less disables limiting.
	RateLimit float64
	Logger    logging.Logger
}

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	resty   *resty.Client
	limiter *rate.Limiter
	ep      Endpoints
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(opts Options) *HTTPClient {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	rc := resty.New()
	rc.
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryMax).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("User-Agent", "Nikbrowser/1.0").
		SetHeader("Accept", "application/json")
	rc.SetTransport(retryClient.HTTPClient.Transport)

	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(common.RequestIDHeaderName) == "" {
			r.SetHeader(common.RequestIDHeaderName, uuid.NewString())
		}
		return nil
	})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(1, int(opts.RateLimit)))
	}

	return &HTTPClient{
		resty:   rc,
		limiter: limiter,
		ep:      opts.Endpoints,
		log:     log.With("component", "http-client"),
	}
}

func (c *HTTPClient) Close() error {
	c.resty.GetClient().CloseIdleConnections()
	return nil
}

type request struct {
	method  string
	url     string
	headers map[string]string
	query   map[string]string
	body    any
}

type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

// call performs req and decodes a successful body into out (when non-nil).
func (c *HTTPClient) call(ctx context.Context, req request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	r := c.resty.R().SetContext(ctx).SetHeaders(req.headers)
	if req.query != nil {
		r.SetQueryParams(req.query)
	}
	if req.body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.body)
	}

	resp, err := r.Execute(req.method, req.url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if netx.IsConnectivity(err) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("%s %s: %w", req.method, req.url, err)
	}

	status := resp.StatusCode()
	raw := resp.Body()
	c.log.Debug(ctx, "collaborator answered",
		"method", req.method, "url", req.url, "status", status,
		"request_id", resp.Request.Header.Get(common.RequestIDHeaderName))

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if status < 200 || status > 299 {
		if decodeErr == nil && env.Error != "" {
			return &APIError{Status: status, Message: env.Error}
		}
		if status == http.StatusUnauthorized {
			return &APIError{Status: status, Message: http.StatusText(status)}
		}
		return fmt.Errorf("%w: %s %s returned %d", ErrUnavailable, req.method, req.url, status)
	}

	if decodeErr != nil {
		return fmt.Errorf("%w: malformed response from %s", ErrUnavailable, req.url)
	}
	if env.Success != nil && !*env.Success {
		if env.Error != "" {
			return &APIError{Status: status, Message: env.Error}
		}
		return fmt.Errorf("%w: %s reported failure", ErrUnavailable, req.url)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: malformed response from %s: %v", ErrUnavailable, req.url, err)
		}
	}
	return nil
}

func tokenHeader(token string) map[string]string {
	return map[string]string{common.SessionTokenHeaderName: token}
}

func userHeader(userID int64) map[string]string {
	return map[string]string{common.UserIDHeaderName: strconv.FormatInt(userID, 10)}
}

// auth

type authResponse struct {
	User         *models.Identity `json:"user"`
	SessionToken string           `json:"session_token"`
	ExpiresAt    string           `json:"expires_at"`
}

func (c *HTTPClient) Register(ctx context.Context, creds models.Credentials) (*AuthResult, error) {
	body := map[string]any{
		"action":       "register",
		"password":     string(creds.Password),
		"display_name": creds.DisplayName,
	}
	if creds.Email != "" {
		body["email"] = creds.Email
	} else {
		body["phone"] = creds.Phone
	}
	return c.authenticate(ctx, body)
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*AuthResult, error) {
	body := map[string]any{
		"action":   "login",
		"login":    creds.Login(),
		"password": string(creds.Password),
	}
	return c.authenticate(ctx, body)
}

func (c *HTTPClient) authenticate(ctx context.Context, body map[string]any) (*AuthResult, error) {
	var resp authResponse
	err := c.call(ctx, request{method: http.MethodPost, url: c.ep.Auth, body: body}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, &CredentialError{Status: apiErr.Status, Message: apiErr.Message}
		}
		return nil, err
	}

	if resp.User == nil || resp.User.Validate() != nil || resp.SessionToken == "" {
		return nil, fmt.Errorf("%w: auth response lacks user or session token", ErrUnavailable)
	}

	result := &AuthResult{Identity: *resp.User, Token: resp.SessionToken}
	if resp.ExpiresAt != "" {
		expires, err := timex.ParseTimestamp(resp.ExpiresAt)
		if err != nil {
			c.log.Warn(ctx, "ignoring unparsable session expiry", "expires_at", resp.ExpiresAt)
		} else {
			result.ExpiresAt = expires
		}
	}
	return result, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	body := map[string]any{"action": "logout", "session_token": token}
	return c.call(ctx, request{method: http.MethodPost, url: c.ep.Auth, body: body}, nil)
}

// VerifySession returns ErrUnauthorized (wrapped) when the service rejects
// the token and ErrUnavailable when it cannot be asked.
func (c *HTTPClient) VerifySession(ctx context.Context, token string) (*models.Identity, error) {
	var resp authResponse
	body := map[string]any{"action": "verify_session", "session_token": token}
	err := c.call(ctx, request{method: http.MethodPost, url: c.ep.Auth, body: body}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
		}
		return nil, err
	}
	if resp.User == nil || resp.User.Validate() != nil {
		return nil, fmt.Errorf("%w: verify response lacks user", ErrUnavailable)
	}
	return resp.User, nil
}

// history

func (c *HTTPClient) AddHistory(ctx context.Context, token, query string, engine models.SearchEngine) error {
	body := map[string]any{
		"action":        "add",
		"search_query":  query,
		"search_engine": string(engine),
		"is_incognito":  false,
	}
	return c.call(ctx, request{method: http.MethodPost, url: c.ep.History, headers: tokenHeader(token), body: body}, nil)
}

func (c *HTTPClient) ListHistory(ctx context.Context, token string, limit int) ([]models.HistoryItem, error) {
	var resp struct {
		History []models.HistoryItem `json:"history"`
	}
	req := request{
		method:  http.MethodGet,
		url:     c.ep.History,
		headers: tokenHeader(token),
		query:   map[string]string{"limit": strconv.Itoa(limit)},
	}
	if err := c.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

func (c *HTTPClient) ClearHistory(ctx context.Context, token string) error {
	body := map[string]any{"action": "clear"}
	return c.call(ctx, request{method: http.MethodPost, url: c.ep.History, headers: tokenHeader(token), body: body}, nil)
}

// mail

func (c *HTTPClient) ListMail(ctx context.Context, token string, folder models.MailFolder, limit int) ([]models.Email, error) {
	var resp struct {
		Emails []models.Email `json:"emails"`
	}
	req := request{
		method:  http.MethodGet,
		url:     c.ep.Mail,
		headers: tokenHeader(token),
		query:   map[string]string{"folder": string(folder), "limit": strconv.Itoa(limit)},
	}
	if err := c.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Emails, nil
}

func (c *HTTPClient) SendMail(ctx context.Context, token string, email models.OutgoingEmail) (int64, error) {
	var resp struct {
		EmailID int64 `json:"email_id"`
	}
	body := map[string]any{
		"action":   "send",
		"to_email": email.ToEmail,
		"subject":  email.Subject,
		"body":     email.Body,
	}
	if err := c.call(ctx, request{method: http.MethodPost, url: c.ep.Mail, headers: tokenHeader(token), body: body}, &resp); err != nil {
		return 0, err
	}
	return resp.EmailID, nil
}

func (c *HTTPClient) MarkRead(ctx context.Context, token string, id int64) error {
	return c.mailAction(ctx, token, "mark_read", id, nil)
}

func (c *HTTPClient) ToggleStar(ctx context.Context, token string, id int64) (bool, error) {
	var resp struct {
		IsStarred bool `json:"is_starred"`
	}
	if err := c.mailAction(ctx, token, "toggle_star", id, &resp); err != nil {
		return false, err
	}
	return resp.IsStarred, nil
}

func (c *HTTPClient) Archive(ctx context.Context, token string, id int64) error {
	return c.mailAction(ctx, token, "archive", id, nil)
}

func (c *HTTPClient) mailAction(ctx context.Context, token, action string, id int64, out any) error {
	body := map[string]any{"action": action, "email_id": id}
	return c.call(ctx, request{method: http.MethodPost, url: c.ep.Mail, headers: tokenHeader(token), body: body}, out)
}

// downloads

func (c *HTTPClient) ListDownloads(ctx context.Context, userID int64) ([]models.Download, error) {
	var resp struct {
		Downloads []models.Download `json:"downloads"`
	}
	if err := c.call(ctx, request{method: http.MethodGet, url: c.ep.Downloads, headers: userHeader(userID)}, &resp); err != nil {
		return nil, err
	}
	return resp.Downloads, nil
}

func (c *HTTPClient) SetInstalled(ctx context.Context, userID, id int64, installed bool) error {
	body := map[string]any{"id": id, "is_installed": installed}
	return c.call(ctx, request{method: http.MethodPut, url: c.ep.Downloads, headers: userHeader(userID), body: body}, nil)
}

func (c *HTTPClient) DeleteDownload(ctx context.Context, userID, id int64) error {
	req := request{
		method:  http.MethodDelete,
		url:     c.ep.Downloads,
		headers: userHeader(userID),
		query:   map[string]string{"id": strconv.FormatInt(id, 10)},
	}
	return c.call(ctx, req, nil)
}
