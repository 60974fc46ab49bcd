// Package backendfake is an in-process stand-in for the REST backend's auth
// endpoints, used by tests that exercise the real HTTP client.
package backendfake

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/jrsteele09/go-session-client/internal/utils"
	"github.com/jrsteele09/go-session-client/oauthmodel"
)

// Response is what the fake returns for one path.
type Response struct {
	Status int
	Body   any    // encoded as JSON when Raw is empty
	Raw    string // sent verbatim when set
	Delay  time.Duration
}

// Request is a recorded incoming call.
type Request struct {
	Header http.Header
	Body   []byte
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	requests  map[string][]Request
}

func New() *Server {
	s := &Server{
		responses: make(map[string]Response),
		requests:  make(map[string][]Request),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+oauthmodel.AuthenticationPath, s.handle)
	mux.HandleFunc("POST "+oauthmodel.RefreshPath, s.handle)
	s.Server = httptest.NewServer(mux)
	return s
}

// Respond sets the response for path.
func (s *Server) Respond(path string, r Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = r
}

// Requests returns the calls received on path so far.
func (s *Server) Requests(path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests[path]))
	copy(out, s.requests[path])
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests[r.URL.Path] = append(s.requests[r.URL.Path], Request{Header: r.Header.Clone(), Body: body})
	resp, ok := s.responses[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		resp = Response{
			Status: http.StatusNotFound,
			Body:   oauthmodel.Envelope[oauthmodel.AuthenticationData]{ResponseCode: "404", Message: "not configured"},
		}
	}

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	if resp.Raw != "" {
		io.WriteString(w, resp.Raw)
		return
	}
	if resp.Body != nil {
		json.NewEncoder(w).Encode(resp.Body)
	}
}

// Authenticated builds a successful envelope.
func Authenticated(token, refreshToken string, account oauthmodel.AccountInfo) Response {
	return Response{
		Status: http.StatusOK,
		Body: oauthmodel.Envelope[oauthmodel.AuthenticationData]{
			ResponseCode: "200",
			Message:      "OK",
			Data: &oauthmodel.AuthenticationData{
				Authenticated: true,
				Token:         utils.NonEmpty(token),
				RefreshToken:  utils.NonEmpty(refreshToken),
				AccountInfo:   &account,
			},
		},
	}
}

// Rejected builds an error envelope with the given HTTP status.
func Rejected(status int, message string) Response {
	return Response{
		Status: status,
		Body: oauthmodel.Envelope[oauthmodel.AuthenticationData]{
			ResponseCode: http.StatusText(status),
			Message:      message,
		},
	}
}
