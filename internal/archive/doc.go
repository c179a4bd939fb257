// Package archive reads and writes the zip artifacts the repository is
// built from: it extracts the embedded addon.xml manifest out of downloaded
// release archives and packs the repository addon directory into one.
package archive
