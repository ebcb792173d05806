package session

import (
	"github.com/elC0mpa/cost-doctor/model"
)

type staticClient struct {
	client *model.Client
}

// NewStaticClient returns a client context that always yields client; nil means nothing is selected
func NewStaticClient(client *model.Client) *staticClient {
	return &staticClient{client: client}
}

func (c *staticClient) SelectedClient() (*model.Client, bool) {
	if c.client == nil || c.client.ID == "" {
		return nil, false
	}
	return c.client, true
}
