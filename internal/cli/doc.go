// Package cli defines the packd command tree.
//
// The binary doubles as daemon and client: 'packd start' runs the
// daemon in the foreground, while every other subcommand talks to a
// running daemon over its Unix socket.
//
// Global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-s, --socket    Unix socket path.
//
// Flags override build-time defaults set via linker flags. After parsing,
// the global logger is reconfigured to reflect the final level before the
// selected command runs.
package cli
