// Package album defines the photo album model shared by the manifest store,
// the album transformer, the origin syncer, and the gallery client.
//
// An album directory is either raw (loose source images, no metadata) or
// published (data.json plus low/ and full/ asset directories). The package
// also owns the error markers every pipeline stage tags its failures with, so
// callers can classify errors with errors.Is regardless of which layer
// produced them.
package album
