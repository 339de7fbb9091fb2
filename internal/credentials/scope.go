package credentials

import (
	"fmt"
	"os"
	"slices"

	"github.com/ethanbaker/office-assistant/pkg/utils"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"gopkg.in/yaml.v3"
)

const (
	// CalendarScopeSet names the scope-set used for calendar access
	CalendarScopeSet = "calendar"

	// GmailScopeSet names the scope-set used for drafting and sending mail
	GmailScopeSet = "gmail"
)

// ScopeSet groups the OAuth scopes requested together with the files holding
// the client secrets and the persisted token for that grant
type ScopeSet struct {
	Name              string   `json:"name" yaml:"name"`
	Scopes            []string `json:"scopes" yaml:"scopes"`
	ClientSecretsPath string   `json:"client_secrets" yaml:"client_secrets"`
	TokenPath         string   `json:"token" yaml:"token"`
}

// scopeConfig represents the structure of the optional scope-set override file
type scopeConfig struct {
	ScopeSets []ScopeSet `yaml:"scope_sets"`
}

// DefaultScopeSets returns the calendar and gmail scope-sets with file paths
// taken from the config
func DefaultScopeSets(cfg *utils.Config) map[string]ScopeSet {
	return map[string]ScopeSet{
		CalendarScopeSet: {
			Name:              CalendarScopeSet,
			Scopes:            []string{calendar.CalendarScope},
			ClientSecretsPath: cfg.GetWithDefault("GOOGLE_CALENDAR_CREDENTIALS_JSON", "credentials_calendar.json"),
			TokenPath:         cfg.GetWithDefault("GOOGLE_CALENDAR_TOKEN_JSON", "token_calendar.json"),
		},
		GmailScopeSet: {
			Name:              GmailScopeSet,
			Scopes:            []string{gmail.GmailComposeScope},
			ClientSecretsPath: cfg.GetWithDefault("GOOGLE_GMAIL_CREDENTIALS_JSON", "credentials_gmail.json"),
			TokenPath:         cfg.GetWithDefault("GOOGLE_GMAIL_TOKEN_JSON", "token_gmail.json"),
		},
	}
}

// LoadScopeSets returns the default scope-sets, replaced or extended by the
// entries of the YAML file named by GOOGLE_SCOPES_CONFIG when it is set.
// Fields left empty in the file keep their default values
func LoadScopeSets(cfg *utils.Config) (map[string]ScopeSet, error) {
	sets := DefaultScopeSets(cfg)

	path := cfg.Get("GOOGLE_SCOPES_CONFIG")
	if path == "" {
		return sets, nil
	}

	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scope config file: %w", err)
	}

	var conf scopeConfig
	if err := yaml.Unmarshal(f, &conf); err != nil {
		return nil, fmt.Errorf("failed to parse scope config: %w", err)
	}

	for _, override := range conf.ScopeSets {
		if override.Name == "" {
			return nil, fmt.Errorf("scope config %s: scope set without a name", path)
		}

		merged := sets[override.Name]
		merged.Name = override.Name
		if len(override.Scopes) > 0 {
			merged.Scopes = slices.Clone(override.Scopes)
		}
		if override.ClientSecretsPath != "" {
			merged.ClientSecretsPath = override.ClientSecretsPath
		}
		if override.TokenPath != "" {
			merged.TokenPath = override.TokenPath
		}

		if len(merged.Scopes) == 0 || merged.ClientSecretsPath == "" || merged.TokenPath == "" {
			return nil, fmt.Errorf("scope config %s: scope set %q is incomplete", path, override.Name)
		}
		sets[override.Name] = merged
	}

	return sets, nil
}

// covers reports whether every requested scope was granted
func covers(granted, requested []string) bool {
	for _, scope := range requested {
		if !slices.Contains(granted, scope) {
			return false
		}
	}
	return true
}
