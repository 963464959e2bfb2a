// Package api provides the client for the upstream economy REST API.
//
// Endpoints (relative to the configured base URL, default https://api.hypixel.net):
//   - /v2/skyblock/auctions?page=N   paginated auction listings
//   - /v2/skyblock/bazaar            order books per product
//   - /v2/resources/skyblock/items   static item list with shop prices
//   - /v2/resources/skyblock/election current mayor and perks
//
// Requests carry the key in the API-Key header. Every error returned by a
// Get method wraps ErrRequest or ErrParse.
package api
