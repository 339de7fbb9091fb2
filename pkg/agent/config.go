package agent

import "github.com/ethanbaker/office-assistant/pkg/utils"

// LoadAgentConfig loads configuration for a specific agent. Values from the
// agent-specific .env.<name> file take precedence over the shared env file
// (.env, or ENV_FILE when set); the process environment beats both
func LoadAgentConfig(agentName string) *utils.Config {
	agentEnvFile := ".env." + agentName
	return utils.NewConfigFromEnv(agentEnvFile, utils.EnvFile())
}
