// Package notifications delivers publish and sync events to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers never need to check whether alerts are enabled.
package notifications
