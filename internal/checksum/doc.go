// Package checksum computes the MD5 digests written as .md5 sidecar files
// next to every published artifact and the aggregate addons.xml.
package checksum
