// Package origin publishes album assets to the photo-hosting origin the
// gallery reads from, and can act as that origin itself.
//
// A Target is a destination for objects keyed by their path relative to the
// albums root ("albums.json", "{folder}/data.json", "{folder}/low/x.webp").
// LocalTarget mirrors objects into a directory; S3Target writes to an
// S3-compatible bucket. Syncer walks the published tree, consults the SQLite
// Ledger to skip objects whose content was already pushed, and optionally
// prunes remote keys that no longer exist locally. Server answers the same
// keys over HTTP with cache and CORS headers.
package origin
