package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-client/gateway"
	"github.com/jrsteele09/go-session-client/internal/backendfake"
	errs "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/internal/utils"
	"github.com/jrsteele09/go-session-client/oauthmodel"
)

const (
	testCode        = "abc123"
	testRedirectURI = "https://x/callback"
)

func testAccount() oauthmodel.AccountInfo {
	return oauthmodel.AccountInfo{
		ID:        "42",
		Email:     "a@b.com",
		FirstName: "A",
		LastName:  "B",
		Roles:     []string{"STAFF"},
	}
}

func setup(t *testing.T) (*backendfake.Server, *gateway.Client) {
	t.Helper()
	backend := backendfake.New()
	t.Cleanup(backend.Close)
	return backend, gateway.NewClient(backend.URL + "/")
}

func TestExchangeAuthorizationCode_Success(t *testing.T) {
	backend, client := setup(t)
	backend.Respond(oauthmodel.AuthenticationPath, backendfake.Authenticated("T1", "R1", testAccount()))

	s, err := client.ExchangeAuthorizationCode(context.Background(), testCode, testRedirectURI)
	require.NoError(t, err)
	require.Equal(t, "T1", utils.Value(s.AccessToken))
	require.Equal(t, "R1", utils.Value(s.RefreshToken))
	require.Equal(t, "42", utils.Value(s.AccountID))
	require.Equal(t, "A B", utils.Value(s.DisplayName))
	require.Equal(t, "a@b.com", utils.Value(s.Email))
	require.Nil(t, s.AvatarURL)
	require.Equal(t, []string{"STAFF"}, s.Roles)

	requests := backend.Requests(oauthmodel.AuthenticationPath)
	require.Len(t, requests, 1)
	require.Equal(t, "application/json", requests[0].Header.Get("Accept"))
	require.Equal(t, "application/json", requests[0].Header.Get("Content-Type"))
	require.NotEmpty(t, requests[0].Header.Get("X-Request-ID"))
	require.Empty(t, requests[0].Header.Get("Authorization"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(requests[0].Body, &body))
	require.Equal(t, map[string]string{"code": testCode, "redirectUri": testRedirectURI}, body)
}

func TestExchangeAuthorizationCode_NumericIDAndNullRoles(t *testing.T) {
	backend, client := setup(t)
	backend.Respond(oauthmodel.AuthenticationPath, backendfake.Response{
		Status: http.StatusOK,
		Raw:    `{"responseCode":"200","message":"OK","data":{"authenticated":true,"token":"T1","refreshToken":null,"accountInfo":{"id":42,"roles":null}}}`,
	})

	s, err := client.ExchangeAuthorizationCode(context.Background(), testCode, testRedirectURI)
	require.NoError(t, err)
	require.Equal(t, "42", utils.Value(s.AccountID))
	require.Nil(t, s.RefreshToken)
	require.Nil(t, s.DisplayName)
	require.NotNil(t, s.Roles)
	require.Empty(t, s.Roles)
}

func TestExchangeAuthorizationCode_MissingArguments(t *testing.T) {
	backend, client := setup(t)

	_, err := client.ExchangeAuthorizationCode(context.Background(), "", testRedirectURI)
	require.ErrorIs(t, err, oauthmodel.ErrMissingCode)

	_, err = client.ExchangeAuthorizationCode(context.Background(), testCode, "")
	require.ErrorIs(t, err, oauthmodel.ErrMissingRedirectURI)

	require.Empty(t, backend.Requests(oauthmodel.AuthenticationPath))
}

func TestExchange_BackendRejected(t *testing.T) {
	tests := []struct {
		name     string
		response backendfake.Response
		status   int
		message  string
	}{
		{
			name:     "envelope message",
			response: backendfake.Rejected(http.StatusUnauthorized, "Mã xác thực không hợp lệ"),
			status:   http.StatusUnauthorized,
			message:  "Mã xác thực không hợp lệ",
		},
		{
			name:     "undecodable body",
			response: backendfake.Response{Status: http.StatusBadGateway, Raw: "<html>bad gateway</html>"},
			status:   http.StatusBadGateway,
			message:  http.StatusText(http.StatusBadGateway),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, client := setup(t)
			backend.Respond(oauthmodel.AuthenticationPath, tt.response)

			_, err := client.ExchangeAuthorizationCode(context.Background(), testCode, testRedirectURI)
			rejected, ok := gateway.IsRejected(err)
			require.True(t, ok)
			require.Equal(t, tt.status, rejected.StatusCode)
			require.Equal(t, tt.message, rejected.Message)
			require.False(t, gateway.IsTransient(err))
		})
	}
}

func TestExchange_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "invalid json", raw: `{"responseCode":`},
		{name: "null data", raw: `{"responseCode":"200","message":"OK","data":null}`},
		{name: "token without profile", raw: `{"data":{"authenticated":true,"token":"T1","accountInfo":null}}`},
		{name: "profile without token", raw: `{"data":{"authenticated":true,"token":null,"accountInfo":{"id":"42"}}}`},
		{name: "empty token", raw: `{"data":{"authenticated":true,"token":"","accountInfo":{"id":"42"}}}`},
		{name: "profile without id", raw: `{"data":{"authenticated":true,"token":"T1","accountInfo":{"email":"a@b.com"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, client := setup(t)
			backend.Respond(oauthmodel.RefreshPath, backendfake.Response{Status: http.StatusOK, Raw: tt.raw})

			s, err := client.ExchangeRefreshToken(context.Background(), "R1")
			require.ErrorIs(t, err, errs.ErrMalformedResponse)
			require.False(t, s.HasAccessToken())
		})
	}
}

func TestExchange_NetworkError(t *testing.T) {
	backend := backendfake.New()
	client := gateway.NewClient(backend.URL)
	backend.Close()

	_, err := client.ExchangeRefreshToken(context.Background(), "R1")
	require.ErrorIs(t, err, errs.ErrNetwork)
	require.True(t, gateway.IsTransient(err))
}

func TestExchange_TimeoutIsNetworkError(t *testing.T) {
	backend, client := setup(t)
	backend.Respond(oauthmodel.RefreshPath, backendfake.Response{Status: http.StatusOK, Delay: 2 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.ExchangeRefreshToken(ctx, "R1")
	require.ErrorIs(t, err, errs.ErrNetwork)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExchangeRefreshToken_NoTokenSkipsNetwork(t *testing.T) {
	backend, client := setup(t)

	_, err := client.ExchangeRefreshToken(context.Background(), "")
	require.ErrorIs(t, err, errs.ErrNoRefreshToken)
	require.Empty(t, backend.Requests(oauthmodel.RefreshPath))
}

func TestExchangeRefreshToken_Success(t *testing.T) {
	backend, client := setup(t)
	account := testAccount()
	account.Roles = []string{"ROLE_ADMIN_SYSTEM"}
	backend.Respond(oauthmodel.RefreshPath, backendfake.Authenticated("T2", "R2", account))

	s, err := client.ExchangeRefreshToken(context.Background(), "R1")
	require.NoError(t, err)
	require.Equal(t, "T2", utils.Value(s.AccessToken))
	require.Equal(t, []string{"ROLE_ADMIN_SYSTEM"}, s.Roles)

	requests := backend.Requests(oauthmodel.RefreshPath)
	require.Len(t, requests, 1)
	require.JSONEq(t, `{"refreshToken":"R1"}`, string(requests[0].Body))
}

func TestIsRevoked(t *testing.T) {
	require.True(t, gateway.IsRevoked(&gateway.BackendRejectedError{StatusCode: http.StatusUnauthorized}))
	require.True(t, gateway.IsRevoked(&gateway.BackendRejectedError{StatusCode: http.StatusForbidden}))
	require.False(t, gateway.IsRevoked(&gateway.BackendRejectedError{StatusCode: http.StatusInternalServerError}))
	require.False(t, gateway.IsRevoked(errs.ErrNetwork))
}

func TestExchange_NotAuthenticatedIsRejection(t *testing.T) {
	backend, client := setup(t)
	backend.Respond(oauthmodel.AuthenticationPath, backendfake.Response{
		Status: http.StatusOK,
		Raw:    `{"responseCode":"AUTH_FAILED","message":"Mã đăng nhập không hợp lệ","data":{"authenticated":false,"token":null,"refreshToken":null,"accountInfo":null}}`,
	})

	_, err := client.ExchangeAuthorizationCode(context.Background(), testCode, testRedirectURI)
	rejected, ok := gateway.IsRejected(err)
	require.True(t, ok)
	require.Equal(t, http.StatusOK, rejected.StatusCode)
	require.Equal(t, "AUTH_FAILED", rejected.ResponseCode)
	require.Equal(t, "Mã đăng nhập không hợp lệ", rejected.Message)
	require.NotErrorIs(t, err, errs.ErrMalformedResponse)
}

func TestWithTimeout_DoesNotModifyCallerClient(t *testing.T) {
	backend, _ := setup(t)
	backend.Respond(oauthmodel.RefreshPath, backendfake.Response{Status: http.StatusOK, Delay: 2 * time.Second})

	shared := &http.Client{}
	client := gateway.NewClient(backend.URL, gateway.WithHTTPClient(shared), gateway.WithTimeout(50*time.Millisecond))
	require.Zero(t, shared.Timeout)

	_, err := client.ExchangeRefreshToken(context.Background(), "R1")
	require.ErrorIs(t, err, errs.ErrNetwork)
}

func TestWithTimeout_NilHTTPClient(t *testing.T) {
	backend, _ := setup(t)
	backend.Respond(oauthmodel.RefreshPath, backendfake.Authenticated("T2", "R2", testAccount()))

	var client *gateway.Client
	require.NotPanics(t, func() {
		client = gateway.NewClient(backend.URL, gateway.WithHTTPClient(nil), gateway.WithTimeout(time.Second))
	})

	s, err := client.ExchangeRefreshToken(context.Background(), "R1")
	require.NoError(t, err)
	require.Equal(t, "T2", utils.Value(s.AccessToken))
}
