package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/oauth2"
)

const resultPage = `
<!DOCTYPE html>
<html>
<head>
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: %s; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`

func writeResultPage(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	if ok {
		fmt.Fprintf(w, resultPage, "Connection Successful", "#16a34a", "✓ Connection Successful")
	} else {
		fmt.Fprintf(w, resultPage, "Connection Failed", "#dc2626", "✗ Connection Failed")
	}
}

// CallbackHandler receives the backend's redirect at the end of a connection
// attempt and forwards the raw query parameters to the waiting controller.
// Implements the Handler interface for registration with a Router.
//
// Only the first hit is processed: replays of the callback URL (a page refresh
// in the authorization window) are rejected with 400 and produce no second
// result, mirroring a consumed callback.
type CallbackHandler struct {
	state       string
	resultChan  chan url.Values
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a callback handler expecting the given state nonce.
// The state should be cryptographically random; an empty state disables the check.
func NewCallbackHandler(state string) *CallbackHandler {
	return &CallbackHandler{
		state:      state,
		resultChan: make(chan url.Values, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the redirect callback request.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle callback once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()

	if h.state != "" && query.Get("state") != h.state {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		h.send(url.Values{"error": {"oauth_failed"}})
		return
	}

	success := query.Get("success") == "true" && query.Get("error") == ""
	writeResultPage(w, success)
	h.send(query)
}

// send forwards the result through the channel (only once).
func (h *CallbackHandler) send(values url.Values) {
	h.once.Do(func() {
		h.resultChan <- values
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving the callback query parameters.
//
// Channel will receive exactly one value and then be closed.
func (h *CallbackHandler) Result() <-chan url.Values {
	return h.resultChan
}

// OAuthResult contains the result of a direct OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// ExchangeHandler handles OAuth2 callback requests for the generic provider's
// direct authorization code flow: it validates state and exchanges the code
// for tokens itself instead of handing the parameters back to the backend.
type ExchangeHandler struct {
	config      *oauth2.Config
	state       string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewExchangeHandler creates a new exchange handler with the given OAuth2 config and state token.
func NewExchangeHandler(config *oauth2.Config, state string) *ExchangeHandler {
	return &ExchangeHandler{
		config:     config,
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *ExchangeHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the OAuth callback request.
//
// Validates the state parameter, exchanges the authorization code for tokens,
// and sends the result through the result channel.
func (h *ExchangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle callback once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	state := r.URL.Query().Get("state")
	if state != h.state {
		err := fmt.Errorf("invalid state parameter")
		h.Send(OAuthResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		err := fmt.Errorf("authorization failed: %s - %s", errParam, errDesc)
		h.Send(OAuthResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(context.Background(), code)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})
	writeResultPage(w, true)
}

// Send sends the OAuth result through the channel (only once).
func (h *ExchangeHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *ExchangeHandler) Result() <-chan OAuthResult {
	return h.resultChan
}
