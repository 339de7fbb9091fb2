package credentials

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// DefaultFlowTimeout bounds how long the user has to complete consent
const DefaultFlowTimeout = 5 * time.Minute

// ErrConsentDenied is returned when the provider redirects back with an error
var ErrConsentDenied = errors.New("consent denied")

// ErrAuthorizationRequired is returned by OfflineAuthorizer
var ErrAuthorizationRequired = errors.New("authorization required")

// OfflineAuthorizer never starts a consent flow. Servers use it so a request
// fails fast instead of waiting on a browser nobody is watching
type OfflineAuthorizer struct {
	// Hint tells the operator how to grant access, e.g. the authorize command
	Hint string
}

// Authorize implements Authorizer
func (a OfflineAuthorizer) Authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	if a.Hint == "" {
		return nil, ErrAuthorizationRequired
	}
	return nil, fmt.Errorf("%w: %s", ErrAuthorizationRequired, a.Hint)
}

// LoopbackAuthorizer runs the installed-app consent flow: it serves a one-shot
// redirect endpoint on the loopback interface, opens the consent page and
// exchanges the returned code for a token
type LoopbackAuthorizer struct {
	// Port to listen on; 0 picks a free port
	Port int

	// Timeout bounds the whole flow; zero means DefaultFlowTimeout
	Timeout time.Duration

	// Open shows the consent URL to the user. Nil only logs it
	Open func(url string) error
}

// callbackResult is what the redirect handler hands back to Authorize
type callbackResult struct {
	code string
	err  error
}

// Authorize implements Authorizer
func (a *LoopbackAuthorizer) Authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultFlowTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", a.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for oauth redirect: %w", err)
	}

	conf := *config
	conf.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())
	state := uuid.NewString()

	results := make(chan callbackResult, 1)
	server := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Msg("oauth redirect server stopped")
		}
	}()
	defer server.Close()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
	log.Info().Str("url", authURL).Msg("open this URL to authorize the assistant")
	if a.Open != nil {
		if err := a.Open(authURL); err != nil {
			log.Warn().Err(err).Msg("could not open browser, visit the URL manually")
		}
	}

	var result callbackResult
	select {
	case result = <-results:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for consent: %w", ctx.Err())
	}
	if result.err != nil {
		return nil, result.err
	}

	token, err := conf.Exchange(ctx, result.code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return token, nil
}

// callbackHandler answers the provider redirect and forwards the first
// result. Requests for other paths (favicon) are ignored
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		query := r.URL.Query()
		var result callbackResult
		switch {
		case query.Get("state") != state:
			result.err = errors.New("oauth state mismatch")
		case query.Get("error") != "":
			result.err = fmt.Errorf("%w: %s", ErrConsentDenied, query.Get("error"))
		case query.Get("code") == "":
			result.err = errors.New("oauth redirect without code")
		default:
			result.code = query.Get("code")
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if result.err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintln(w, "Authorization failed. You may close this window.")
		} else {
			fmt.Fprintln(w, "The authentication flow has completed. You may close this window.")
		}

		select {
		case results <- result:
		default:
		}
	})
}

// OpenBrowser opens a URL with the platform's default handler
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
