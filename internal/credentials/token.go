package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Credential is the on-disk form of a token: the oauth2 fields plus the
// scopes it was granted for
type Credential struct {
	oauth2.Token
	Scopes []string `json:"scopes,omitempty"`
}

// loadCredential reads a persisted credential. A missing file is reported
// with an error satisfying errors.Is(err, os.ErrNotExist)
func loadCredential(path string) (*Credential, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cred Credential
	if err := json.Unmarshal(f, &cred); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}

	return &cred, nil
}

// saveCredential writes a token and its scopes to disk, readable only by the owner
func saveCredential(path string, token *oauth2.Token, scopes []string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("unable to save token: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to save token: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Credential{Token: *token, Scopes: slices.Clone(scopes)})
}

// tokenSavingSource wraps an oauth2.TokenSource and saves refreshed tokens
// to disk so that the file always holds the latest grant
type tokenSavingSource struct {
	source    oauth2.TokenSource
	tokenPath string
	scopes    []string
	lastToken *oauth2.Token
}

// Token returns a valid token, refreshing if necessary and saving to disk
func (t *tokenSavingSource) Token() (*oauth2.Token, error) {
	token, err := t.source.Token()
	if err != nil {
		return nil, err
	}

	if t.lastToken == nil || t.lastToken.AccessToken != token.AccessToken {
		if saveErr := saveCredential(t.tokenPath, token, t.scopes); saveErr != nil {
			log.Warn().Err(saveErr).Str("path", t.tokenPath).Msg("failed to save refreshed token")
		}
		t.lastToken = token
	}

	return token, nil
}
