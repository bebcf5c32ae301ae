// Package protocol defines the wire format between the packd CLI and daemon.
//
// Messages are newline-delimited JSON envelopes carrying a command name and
// an optional payload. Each connection performs a single request-response
// exchange. Payload types cover builds, image and container lifecycle, the
// tag registry, and daemon status.
//
// Files transferred between client and daemon use the [File] payload:
// content under 20 kB travels inline (base64, with hex accepted for older
// clients), larger content is referenced by path.
package protocol
