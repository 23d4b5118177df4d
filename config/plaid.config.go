package config

import (
	"github.com/plaid/plaid-go/v32/plaid"
)

// PlaidInit returns nil when Plaid credentials are not configured.
func PlaidInit(cfg Config) *plaid.APIClient {
	if !cfg.PlaidEnabled() {
		return nil
	}

	// Initialize the Plaid client
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.PlaidClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.PlaidSecret)
	configuration.UseEnvironment(plaidEnvironment(cfg.PlaidEnv))

	return plaid.NewAPIClient(configuration)
}

func plaidEnvironment(name string) plaid.Environment {
	if name == "production" {
		return plaid.Production
	}
	return plaid.Sandbox
}
