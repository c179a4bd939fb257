// Package generator rebuilds the publishable addon repository tree.
//
// One run packages the repository addon itself, downloads the latest
// release artifact of every configured addon, extracts the embedded
// addon.xml manifests, merges them into addons.xml with an MD5 sidecar,
// and emits static index.html listings for Kodi's HTTP file browser.
// The output directory is wiped and rebuilt from scratch every run;
// individual addon failures are warnings, a run only fails when nothing
// at all could be packaged.
package generator
