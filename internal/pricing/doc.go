// Package pricing turns upstream market data into cached price records.
//
// Engine holds the pure folds: lowest fixed-price listing per canonical item
// and per attribute, top of book per bazaar product, and shop sell prices.
// Refresher runs one fetch, fold and store cycle per category and is driven
// by the poller.
package pricing
