package command

import (
	"path/filepath"
	"strings"
)

// ResolveExePath normalizes a caller-supplied executable path, falling
// back to def when custom is empty. The result is always absolute;
// relative paths resolve against the current working directory.
// No filesystem access happens here.
func ResolveExePath(custom, def string) string {
	path := strings.TrimSpace(custom)
	if path == "" {
		path = def
	}
	path = stripDriveSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// stripDriveSlash tolerates the foreign quoting convention some calling
// environments apply to drive-letter paths, e.g. "/j:/mcp/tool.exe"
// becomes "j:/mcp/tool.exe".
func stripDriveSlash(path string) string {
	if strings.HasPrefix(path, "/") && len(path) > 2 && path[2] == ':' {
		return path[1:]
	}
	return path
}
