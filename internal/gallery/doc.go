// Package gallery reads published albums over HTTP the way the gallery web
// page does.
//
// Client.ListAlbums fetches albums.json and every listed album's data.json
// concurrently, drops albums whose metadata cannot be loaded, and returns the
// rest newest first. Client.LoadAlbum backs the album detail view and fails
// outright on any fetch or schema problem. URL derivation for thumbnails and
// downloads is pure and lives in ThumbnailURL and DownloadURL.
package gallery
