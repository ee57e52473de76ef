package datalayer

import (
	"context"
	"strings"
)

type addressResponse struct {
	Address string `json:"address"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ResolveAddress asks the upstream node for the gateway's receive
// address, starting from the configured default. An empty resolved
// address falls back to the default.
func (c *Client) ResolveAddress(ctx context.Context, configuredDefault string) (string, error) {
	var resp addressResponse
	err := c.call(ctx, "/get_address", map[string]interface{}{"default": configuredDefault}, &resp)
	if err != nil {
		return "", err
	}

	address := strings.TrimSpace(resp.Address)
	if !resp.Success || address == "" {
		return configuredDefault, nil
	}

	return address, nil
}
