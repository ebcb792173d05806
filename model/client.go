package model

// Environment is a billing scope of a client (Azure subscription, AWS account, GCP project)
type Environment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client is the tenant whose costs are queried
type Client struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Provider     string        `json:"provider"`
	Environments []Environment `json:"environments"`
}

// EnvironmentName returns the display name of the environment with the given ID
func (c Client) EnvironmentName(id string) string {
	for _, env := range c.Environments {
		if env.ID == id && env.Name != "" {
			return env.Name
		}
	}
	return id
}

// AccountInfo represents cloud account/project identity
type AccountInfo struct {
	Provider    string
	AccountID   string
	AccountName string
}
