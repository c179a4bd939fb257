// Package release acquires upstream addon artifacts.
//
// A Source abstracts the release hosting service (the GitHub implementation
// queries the Releases API and downloads assets over HTTPS with retries).
// The Acquirer drives one addon through the query-download-extract sequence
// and converts upstream failures into per-addon skips.
package release
