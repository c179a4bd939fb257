// Package manifest merges per-addon manifest fragments into the aggregate
// addons.xml document and reads identity attributes off a single addon.xml.
//
// Fragments are treated as opaque text: they are never re-parsed or
// mutated, only their XML declaration lines are stripped before merging.
package manifest
