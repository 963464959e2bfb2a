package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// DefaultPaginationTimeout bounds a whole GetAllListings walk unless
// WithPaginationTimeout says otherwise.
const DefaultPaginationTimeout = 3 * time.Minute

// PaginationError reports the page on which a paginated fetch failed. The
// pages fetched before it are discarded.
type PaginationError struct {
	Page int
	Err  error
}

func (e *PaginationError) Error() string {
	return fmt.Sprintf("fetch auctions page %d: %v", e.Page, e.Err)
}

func (e *PaginationError) Unwrap() error {
	return e.Err
}

// GetAuctions fetches one page of active auctions.
func (c *Client) GetAuctions(ctx context.Context, page int) (*AuctionsResponse, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))

	var resp AuctionsResponse
	if err := c.get(ctx, "/v2/skyblock/auctions", query, &resp); err != nil {
		return nil, fmt.Errorf("get auctions: %w", err)
	}

	return &resp, nil
}

// GetAllListings fetches every auction page. The last page index is re-read
// from each response, so the walk follows the listing set as it grows or
// shrinks mid-fetch.
func (c *Client) GetAllListings(ctx context.Context) ([]Listing, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.paginationTimeout)
		defer cancel()
	}

	var all []Listing
	lastPage := 0

	for page := 0; page <= lastPage; page++ {
		resp, err := c.GetAuctions(ctx, page)
		if err != nil {
			return nil, &PaginationError{Page: page, Err: err}
		}

		all = append(all, resp.Auctions...)
		lastPage = *resp.TotalPages - 1

		c.logger.Debug("fetched auctions page",
			"page", page,
			"total_pages", *resp.TotalPages,
			"listings", len(resp.Auctions),
		)
	}

	return all, nil
}
