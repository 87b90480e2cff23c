package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentProviderName = "TAXA_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "TAXA_AGENT_BASE_URL"
	EnvAgentToken        = "TAXA_AGENT_TOKEN"
	EnvAgentDeployment   = "TAXA_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "TAXA_AGENT_API_VERSION"
	EnvAgentAuthType     = "TAXA_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "TAXA_AGENT_MODEL_NAME"
)

// Provider credentials land in the go-agents provider options map under
// these keys.
var agentOptionEnv = map[string]string{
	"token":       EnvAgentToken,
	"deployment":  EnvAgentDeployment,
	"api_version": EnvAgentAPIVersion,
	"auth_type":   EnvAgentAuthType,
}

// FinalizeAgent runs the defaults, environment, validate phases against
// a go-agents AgentConfig, starting from DefaultAgentConfig so a partial
// TOML section still yields a complete agent.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults

	loadAgentEnv(c)
	return validateAgent(c)
}

func loadAgentEnv(c *gaconfig.AgentConfig) {
	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}

	setString(&c.Provider.Name, os.Getenv(EnvAgentProviderName))
	setString(&c.Provider.BaseURL, os.Getenv(EnvAgentBaseURL))
	setString(&c.Model.Name, os.Getenv(EnvAgentModelName))

	for key, envVar := range agentOptionEnv {
		v := os.Getenv(envVar)
		if v == "" {
			continue
		}
		if c.Provider.Options == nil {
			c.Provider.Options = make(map[string]any)
		}
		c.Provider.Options[key] = v
	}
}

func validateAgent(c *gaconfig.AgentConfig) error {
	switch {
	case c.Name == "":
		return fmt.Errorf("agent name required")
	case c.Provider == nil || c.Provider.Name == "":
		return fmt.Errorf("agent provider required")
	case c.Model == nil:
		return fmt.Errorf("agent model required")
	}
	return nil
}
