package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethanbaker/office-assistant/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScopeSets(t *testing.T) {
	sets := DefaultScopeSets(utils.NewConfig(map[string]string{
		"GOOGLE_GMAIL_TOKEN_JSON": "/secrets/gmail.json",
	}))

	require.Len(t, sets, 2)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/calendar"}, sets[CalendarScopeSet].Scopes)
	assert.Equal(t, "credentials_calendar.json", sets[CalendarScopeSet].ClientSecretsPath)
	assert.Equal(t, "token_calendar.json", sets[CalendarScopeSet].TokenPath)

	assert.Equal(t, []string{"https://www.googleapis.com/auth/gmail.compose"}, sets[GmailScopeSet].Scopes)
	assert.Equal(t, "/secrets/gmail.json", sets[GmailScopeSet].TokenPath)
}

func TestLoadScopeSets(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("without override file", func(t *testing.T) {
		sets, err := LoadScopeSets(utils.NewConfig(nil))
		require.NoError(t, err)
		assert.Len(t, sets, 2)
	})

	t.Run("override and extend", func(t *testing.T) {
		path := write("scopes.yaml", `
scope_sets:
  - name: gmail
    scopes:
      - https://www.googleapis.com/auth/gmail.modify
  - name: contacts
    scopes:
      - https://www.googleapis.com/auth/contacts.readonly
    client_secrets: credentials_contacts.json
    token: token_contacts.json
`)
		sets, err := LoadScopeSets(utils.NewConfig(map[string]string{"GOOGLE_SCOPES_CONFIG": path}))
		require.NoError(t, err)

		require.Len(t, sets, 3)
		assert.Equal(t, []string{"https://www.googleapis.com/auth/gmail.modify"}, sets[GmailScopeSet].Scopes)
		assert.Equal(t, "token_gmail.json", sets[GmailScopeSet].TokenPath)
		assert.Equal(t, "token_contacts.json", sets["contacts"].TokenPath)
	})

	t.Run("incomplete new set", func(t *testing.T) {
		path := write("incomplete.yaml", "scope_sets:\n  - name: drive\n")
		_, err := LoadScopeSets(utils.NewConfig(map[string]string{"GOOGLE_SCOPES_CONFIG": path}))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadScopeSets(utils.NewConfig(map[string]string{"GOOGLE_SCOPES_CONFIG": filepath.Join(dir, "nope.yaml")}))
		assert.Error(t, err)
	})
}

func TestCovers(t *testing.T) {
	assert.True(t, covers([]string{"a", "b"}, []string{"b"}))
	assert.True(t, covers([]string{"a"}, nil))
	assert.False(t, covers([]string{"a"}, []string{"a", "b"}))
}
