package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	daemonName = "packd"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files (sockets, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/packd or /run/user/<uid>/packd
//	macOS:   ~/Library/Caches/packd/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, daemonName)
	}
	return filepath.Join(xdg.CacheHome, daemonName, "run")
}

// Default path to the Unix domain socket for CLI-to-daemon communication.
//
//	Linux:   $XDG_RUNTIME_DIR/packd/packd.sock
//	macOS:   ~/Library/Caches/packd/run/packd.sock
func Socket() string {
	return filepath.Join(Runtime(), daemonName+".sock")
}

// Default path to the PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/packd/packd.pid
//	macOS:   ~/Library/Caches/packd/run/packd.pid
func PIDFile() string {
	return filepath.Join(Runtime(), daemonName+".pid")
}

// Path to the directory for persistent daemon data (the tag database).
//
//	Linux:   ~/.local/share/packd
//	macOS:   ~/Library/Application Support/packd
func Data() string {
	return filepath.Join(xdg.DataHome, daemonName)
}

// Default path to the tag registry database.
//
//	Linux:   ~/.local/share/packd/tags.db
func TagDB() string {
	return filepath.Join(Data(), "tags.db")
}
