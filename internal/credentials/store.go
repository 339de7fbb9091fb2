// Package credentials obtains, refreshes and persists one OAuth grant per
// scope-set and hands out HTTP clients authorized with it
package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Authorizer runs the interactive consent flow for a client config and
// returns the granted token
type Authorizer interface {
	Authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error)
}

// Store hands out authorized HTTP clients, at most one authorization in
// flight per scope-set
type Store struct {
	authorizer Authorizer
	known      map[string]ScopeSet

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	logger zerolog.Logger
}

// NewStore creates a credential store. The provided scope-sets are the ones
// RefreshExpiring keeps current; Client accepts any scope-set
func NewStore(authorizer Authorizer, scopeSets map[string]ScopeSet) *Store {
	known := make(map[string]ScopeSet, len(scopeSets))
	for name, set := range scopeSets {
		known[name] = set
	}

	return &Store{
		authorizer: authorizer,
		known:      known,
		locks:      make(map[string]*sync.Mutex),
		logger:     log.With().Str("component", "credentials").Logger(),
	}
}

// ScopeSet returns a registered scope-set by name
func (s *Store) ScopeSet(name string) (ScopeSet, bool) {
	set, ok := s.known[name]
	return set, ok
}

// ScopeSetNames returns the registered scope-set names in sorted order
func (s *Store) ScopeSetNames() []string {
	names := make([]string, 0, len(s.known))
	for name := range s.known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lockFor returns the mutex serialising work on a scope-set
func (s *Store) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}

// oauthConfig parses the client secrets of a scope-set
func oauthConfig(scope ScopeSet) (*oauth2.Config, error) {
	secrets, err := os.ReadFile(scope.ClientSecretsPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAuthentication, err, "read client secrets for %s", scope.Name)
	}

	config, err := google.ConfigFromJSON(secrets, scope.Scopes...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAuthentication, err, "parse client secrets for %s", scope.Name)
	}

	return config, nil
}

// Client returns an HTTP client authorized for the scope-set. A valid stored
// token is used as is, an expired one is refreshed, and the interactive flow
// runs when neither works. Tokens obtained along the way are persisted
func (s *Store) Client(ctx context.Context, scope ScopeSet) (*http.Client, error) {
	lock := s.lockFor(scope.Name)
	lock.Lock()
	defer lock.Unlock()

	config, err := oauthConfig(scope)
	if err != nil {
		return nil, err
	}

	token, err := s.token(ctx, scope, config)
	if err != nil {
		return nil, err
	}

	// Refreshes made by the client outlive the call that created it
	base := context.WithoutCancel(ctx)
	source := &tokenSavingSource{
		source:    config.TokenSource(base, token),
		tokenPath: scope.TokenPath,
		scopes:    scope.Scopes,
		lastToken: token,
	}

	return oauth2.NewClient(base, source), nil
}

// token resolves a usable token for the scope-set, persisting any new grant
func (s *Store) token(ctx context.Context, scope ScopeSet, config *oauth2.Config) (*oauth2.Token, error) {
	logger := s.logger.With().Str("scope_set", scope.Name).Logger()

	cred, err := loadCredential(scope.TokenPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info().Msg("no stored token, starting authorization")
	case err != nil:
		logger.Warn().Err(err).Msg("stored token unreadable, starting authorization")
	case !covers(grantedScopes(cred, scope), scope.Scopes):
		logger.Info().Strs("granted", cred.Scopes).Msg("stored token lacks requested scopes, starting authorization")
	case cred.Valid():
		return &cred.Token, nil
	case cred.RefreshToken != "":
		refreshed, refreshErr := config.TokenSource(ctx, &cred.Token).Token()
		if refreshErr == nil {
			if err := saveCredential(scope.TokenPath, refreshed, scope.Scopes); err != nil {
				return nil, apperrors.Wrap(apperrors.ErrStorage, err, "persist refreshed token for %s", scope.Name)
			}
			logger.Debug().Time("expiry", refreshed.Expiry).Msg("refreshed stored token")
			return refreshed, nil
		}
		logger.Warn().Err(refreshErr).Msg("token refresh failed, starting authorization")
	default:
		logger.Info().Msg("stored token expired without refresh token, starting authorization")
	}

	if s.authorizer == nil {
		return nil, apperrors.New(apperrors.ErrAuthentication, "no authorizer available for %s", scope.Name)
	}

	token, err := s.authorizer.Authorize(ctx, config)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAuthentication, err, "authorize %s", scope.Name)
	}
	if token == nil || token.AccessToken == "" {
		return nil, apperrors.New(apperrors.ErrAuthentication, "authorize %s: empty token", scope.Name)
	}

	if err := saveCredential(scope.TokenPath, token, scope.Scopes); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err, "persist token for %s", scope.Name)
	}
	logger.Info().Msg("authorization complete, token saved")

	return token, nil
}

// grantedScopes treats a token file without recorded scopes as granted for
// the scope-set it belongs to
func grantedScopes(cred *Credential, scope ScopeSet) []string {
	if len(cred.Scopes) == 0 {
		return scope.Scopes
	}
	return cred.Scopes
}

// RefreshExpiring refreshes every registered scope-set whose stored token
// expires within the window. It never starts an interactive flow; scope-sets
// without a stored refresh token are skipped
func (s *Store) RefreshExpiring(ctx context.Context, window time.Duration) error {
	var errs []error

	for _, name := range s.ScopeSetNames() {
		if err := s.refreshOne(ctx, s.known[name], window); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// refreshOne refreshes a single scope-set if its token is close to expiry
func (s *Store) refreshOne(ctx context.Context, scope ScopeSet, window time.Duration) error {
	lock := s.lockFor(scope.Name)
	lock.Lock()
	defer lock.Unlock()

	cred, err := loadCredential(scope.TokenPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("refresh %s: %w", scope.Name, err)
	}

	if cred.RefreshToken == "" || cred.Expiry.IsZero() || time.Until(cred.Expiry) > window {
		return nil
	}

	config, err := oauthConfig(scope)
	if err != nil {
		return err
	}

	// A token without an access token is never valid, forcing the refresh
	refreshed, err := config.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrAuthentication, err, "refresh %s", scope.Name)
	}

	scopes := cred.Scopes
	if len(scopes) == 0 {
		scopes = slices.Clone(scope.Scopes)
	}
	if err := saveCredential(scope.TokenPath, refreshed, scopes); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err, "persist refreshed token for %s", scope.Name)
	}

	s.logger.Info().Str("scope_set", scope.Name).Time("expiry", refreshed.Expiry).Msg("refreshed expiring token")
	return nil
}
