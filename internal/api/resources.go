package api

import (
	"context"
	"fmt"
)

// GetBazaar fetches the order book of every bazaar product.
func (c *Client) GetBazaar(ctx context.Context) (*BazaarResponse, error) {
	var resp BazaarResponse
	if err := c.get(ctx, "/v2/skyblock/bazaar", nil, &resp); err != nil {
		return nil, fmt.Errorf("get bazaar: %w", err)
	}
	return &resp, nil
}

// GetItems fetches the static item list with shop sell prices.
func (c *Client) GetItems(ctx context.Context) ([]ItemInfo, error) {
	var resp ItemsResponse
	if err := c.get(ctx, "/v2/resources/skyblock/items", nil, &resp); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return resp.Items, nil
}

// GetElection fetches the current mayor and minister.
func (c *Client) GetElection(ctx context.Context) (*Mayor, error) {
	var resp ElectionResponse
	if err := c.get(ctx, "/v2/resources/skyblock/election", nil, &resp); err != nil {
		return nil, fmt.Errorf("get election: %w", err)
	}
	return resp.Mayor, nil
}
