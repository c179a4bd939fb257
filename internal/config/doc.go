// Package config defines the generator settings and provides helpers to
// load and validate them from YAML.
//
// The configuration lists the upstream addons in publication order plus a
// handful of knobs (output directory, repository addon directory, timeout,
// concurrency) that all have sensible defaults.
package config
