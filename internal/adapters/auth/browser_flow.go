package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

var (
	ErrStateMismatch    = errors.New("login callback state mismatch")
	ErrCallbackTimeout  = errors.New("timed out waiting for login callback")
	ErrMissingState     = errors.New("expected state is required")
	ErrMissingSessionID = errors.New("login callback carried no session id")
)

const callbackPath = "/auth/callback"

var sessionIDPattern = regexp.MustCompile(`session_id=([^&#\s]+)`)

func NewState() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// BuildLoginURL points the hosted sign-in page back at redirectURI once the user is authenticated.
func BuildLoginURL(loginURL, redirectURI string) (string, error) {
	if loginURL == "" {
		return "", errors.New("login url is required")
	}
	if redirectURI == "" {
		return "", errors.New("redirect uri is required")
	}

	parsed, err := url.Parse(loginURL)
	if err != nil {
		return "", fmt.Errorf("parse login url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("login url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("login url host is required")
	}

	q := parsed.Query()
	q.Set("redirect", redirectURI)
	parsed.RawQuery = q.Encode()

	return parsed.String(), nil
}

// ParseExchangeCredential accepts a bare session id, a "#session_id=..." fragment
// or a full redirect URL and returns the session id.
func ParseExchangeCredential(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrMissingSessionID
	}

	if match := sessionIDPattern.FindStringSubmatch(trimmed); match != nil {
		decoded, err := url.QueryUnescape(match[1])
		if err != nil {
			return "", fmt.Errorf("decode session id: %w", err)
		}
		return decoded, nil
	}

	if strings.ContainsAny(trimmed, "=#?/ ") {
		return "", ErrMissingSessionID
	}

	return trimmed, nil
}

// CallbackServer receives the redirect from the hosted sign-in page.
// The session id arrives in the URL fragment, which browsers never send to a server,
// so the first hit serves a page that resubmits the fragment as a query string.
type CallbackServer struct {
	expectedState string
	listener      net.Listener
	server        *http.Server
	resultCh      chan callbackResult
	resultOnce    sync.Once
	closeOnce     sync.Once
}

type callbackResult struct {
	sessionID string
	err       error
}

func StartCallbackServer(listenAddr string, expectedState string) (*CallbackServer, error) {
	if expectedState == "" {
		return nil, ErrMissingState
	}
	if listenAddr == "" {
		listenAddr = "127.0.0.1:0"
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen callback server: %w", err)
	}

	cb := &CallbackServer{
		expectedState: expectedState,
		listener:      listener,
		resultCh:      make(chan callbackResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, cb.handleCallback)

	cb.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if serveErr := cb.server.Serve(cb.listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			cb.trySendResult(callbackResult{err: serveErr})
		}
	}()

	return cb, nil
}

func (c *CallbackServer) RedirectURI() string {
	port := 0
	if tcpAddr, ok := c.listener.Addr().(*net.TCPAddr); ok {
		port = tcpAddr.Port
	}

	q := url.Values{}
	q.Set("state", c.expectedState)
	return fmt.Sprintf("http://localhost:%d%s?%s", port, callbackPath, q.Encode())
}

func (c *CallbackServer) WaitForSessionID(timeout time.Duration) (string, error) {
	defer c.Close()

	select {
	case result := <-c.resultCh:
		return result.sessionID, result.err
	case <-time.After(timeout):
		return "", ErrCallbackTimeout
	}
}

func (c *CallbackServer) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		closeErr = c.server.Close()
	})
	return closeErr
}

func (c *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	state := query.Get("state")

	if state != c.expectedState {
		c.trySendResult(callbackResult{err: ErrStateMismatch})
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	if loginError := query.Get("error"); loginError != "" {
		c.trySendResult(callbackResult{err: fmt.Errorf("login failed: %s", loginError)})
		http.Error(w, "login error", http.StatusBadRequest)
		return
	}

	sessionID := query.Get("session_id")
	if sessionID == "" {
		if query.Get("bridged") != "" {
			c.trySendResult(callbackResult{err: ErrMissingSessionID})
			http.Error(w, "missing session id", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = bridgePage.Execute(w, state)
		return
	}

	c.trySendResult(callbackResult{sessionID: sessionID})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Signed in to Asset Forge. You can close this window."))
}

func (c *CallbackServer) trySendResult(result callbackResult) {
	c.resultOnce.Do(func() {
		c.resultCh <- result
	})
}

var bridgePage = template.Must(template.New("bridge").Parse(`<!doctype html>
<html><head><title>Asset Forge</title></head>
<body>
<p>Completing sign-in&hellip;</p>
<script>
var params = new URLSearchParams(window.location.hash.slice(1));
params.set("state", {{.}});
params.set("bridged", "1");
window.location.replace("` + callbackPath + `?" + params.toString());
</script>
</body></html>
`))
