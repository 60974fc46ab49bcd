// Package gateway talks to the backend's two auth endpoints: authorization-code
// exchange and refresh-token exchange. It never retries and never returns an
// untyped failure: every error is a *BackendRejectedError or wraps one of
// ErrNetwork, ErrMalformedResponse or ErrNoRefreshToken.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	errs "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/internal/metrics"
	"github.com/jrsteele09/go-session-client/internal/utils"
	"github.com/jrsteele09/go-session-client/oauthmodel"
	"github.com/jrsteele09/go-session-client/sessions"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20
	requestIDHeader  = "X-Request-ID"

	operationLogin   = "login"
	operationRefresh = "refresh"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds every exchange, including reading the response. It is
// applied to a copy of the HTTP client, never to one passed in by the caller.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.timeout > 0 {
		httpClient := *c.httpClient
		httpClient.Timeout = c.timeout
		c.httpClient = &httpClient
	}
	return c
}

// ExchangeAuthorizationCode trades an identity-provider authorization code for a session.
func (c *Client) ExchangeAuthorizationCode(ctx context.Context, code, redirectURI string) (sessions.Session, error) {
	req := oauthmodel.AuthenticationRequest{Code: code, RedirectURI: redirectURI}
	if err := req.Validate(); err != nil {
		return sessions.Empty(), fmt.Errorf("[gateway ExchangeAuthorizationCode] %w", err)
	}
	return c.exchange(ctx, operationLogin, oauthmodel.AuthenticationPath, req)
}

// ExchangeRefreshToken trades a refresh token for a new session. An empty
// token fails with ErrNoRefreshToken without touching the network.
func (c *Client) ExchangeRefreshToken(ctx context.Context, refreshToken string) (sessions.Session, error) {
	req := oauthmodel.RefreshRequest{RefreshToken: refreshToken}
	if err := req.Validate(); err != nil {
		return sessions.Empty(), fmt.Errorf("[gateway ExchangeRefreshToken] %w", errs.ErrNoRefreshToken)
	}
	return c.exchange(ctx, operationRefresh, oauthmodel.RefreshPath, req)
}

func (c *Client) exchange(ctx context.Context, operation, path string, payload any) (sessions.Session, error) {
	start := time.Now()
	defer c.metrics.ObserveExchange(operation, start)

	requestID := uuid.NewString()
	logger := c.logger.With().Str("operation", operation).Str("request_id", requestID).Logger()

	body, err := json.Marshal(payload)
	if err != nil {
		return sessions.Empty(), fmt.Errorf("[gateway %s] failed to encode request: %w", operation, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return sessions.Empty(), fmt.Errorf("[gateway %s] failed to build request: %w", operation, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("auth exchange transport failure")
		return sessions.Empty(), fmt.Errorf("[gateway %s] %w: %w", operation, errs.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		logger.Warn().Err(err).Msg("auth exchange failed reading response")
		return sessions.Empty(), fmt.Errorf("[gateway %s] %w: %w", operation, errs.ErrNetwork, err)
	}

	var envelope oauthmodel.Envelope[oauthmodel.AuthenticationData]
	decodeErr := json.Unmarshal(raw, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rejected := &BackendRejectedError{
			StatusCode:   resp.StatusCode,
			ResponseCode: envelope.ResponseCode,
			Message:      envelope.Message,
		}
		if decodeErr != nil || rejected.Message == "" {
			rejected.Message = http.StatusText(resp.StatusCode)
		}
		logger.Info().Int("status", resp.StatusCode).Str("response_code", rejected.ResponseCode).Msg("auth exchange rejected")
		return sessions.Empty(), rejected
	}

	if decodeErr != nil {
		logger.Warn().Err(decodeErr).Int("status", resp.StatusCode).Msg("auth exchange returned undecodable body")
		return sessions.Empty(), fmt.Errorf("[gateway %s] %w: %v", operation, errs.ErrMalformedResponse, decodeErr)
	}

	if data := envelope.Data; data != nil && !data.Authenticated && utils.Value(data.Token) == "" {
		rejected := &BackendRejectedError{
			StatusCode:   resp.StatusCode,
			ResponseCode: envelope.ResponseCode,
			Message:      envelope.Message,
		}
		logger.Info().Int("status", resp.StatusCode).Str("response_code", rejected.ResponseCode).Msg("auth exchange not authenticated")
		return sessions.Empty(), rejected
	}

	session, err := project(envelope.Data)
	if err != nil {
		logger.Warn().Err(err).Msg("auth exchange returned incomplete data")
		return sessions.Empty(), fmt.Errorf("[gateway %s] %w", operation, err)
	}

	logger.Debug().
		Str("account_id", utils.Value(session.AccountID)).
		Str("token", sessions.Fingerprint(utils.Value(session.AccessToken))).
		Dur("elapsed", time.Since(start)).
		Msg("auth exchange succeeded")
	return session, nil
}

// project maps the payload onto a session. Token and account are both
// required; a payload with only one of them is rejected as a whole.
func project(data *oauthmodel.AuthenticationData) (sessions.Session, error) {
	if data == nil {
		return sessions.Empty(), fmt.Errorf("%w: data is empty", errs.ErrMalformedResponse)
	}
	if utils.Value(data.Token) == "" {
		return sessions.Empty(), fmt.Errorf("%w: token is empty", errs.ErrMalformedResponse)
	}
	account := data.AccountInfo
	if account == nil || account.ID == "" {
		return sessions.Empty(), fmt.Errorf("%w: account info is empty", errs.ErrMalformedResponse)
	}

	return sessions.Session{
		AccessToken:  utils.NonEmpty(*data.Token),
		RefreshToken: utils.NonEmpty(utils.Value(data.RefreshToken)),
		AccountID:    utils.NonEmpty(string(account.ID)),
		DisplayName:  utils.NonEmpty(sessions.FullName(account.FirstName, account.LastName)),
		Email:        utils.NonEmpty(account.Email),
		AvatarURL:    utils.NonEmpty(account.AvatarURL),
		Roles:        utils.CloneStrings(account.Roles),
	}, nil
}
