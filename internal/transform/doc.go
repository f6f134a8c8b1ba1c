// Package transform moves album directories between the raw and published
// states and rebuilds the global manifest from the filesystem.
//
// Publish copies every source image byte-for-byte into full/, renders a WebP
// thumbnail into low/, and removes a source only after both derived files
// exist, so an interrupted run can be resumed by publishing again. Reset is
// the inverse: archival copies move back to the album root under their
// generated names and every derived artefact is removed. Both transitions end
// with a full rescan that rewrites albums.json.
//
// The pipeline is single-operator. An advisory lock makes a second concurrent
// run fail fast instead of interleaving file moves.
package transform
