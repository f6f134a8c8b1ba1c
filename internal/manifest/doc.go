// Package manifest reads and writes the two JSON manifest levels of a photo
// gallery: the global albums.json listing every published album folder, and
// the per-album data.json describing one album's photos.
//
// Writes are atomic (temp file, fsync, rename) and always validated first, so
// a reader never observes a half-written or schema-invalid manifest. Reads
// accept both the current structured photo record and the legacy bare
// filename form.
package manifest
