// Package main hosts the photoreel CLI entrypoint and command graph.
//
// The Cobra command tree publishes and resets album directories, rebuilds the
// global manifest, pushes the album tree to the configured origin, serves it
// over HTTP, and renders gallery views from the published manifests.
// Configuration, logging, and the transformer are resolved lazily through
// commandContext so subcommands only pay for what they use.
package main
