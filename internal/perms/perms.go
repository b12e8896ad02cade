// Package perms provides the file and directory modes used for everything mcpconnect writes.
package perms

import "os"

const (
	// RegularFile is used for the config file, which is meant to be shared and committed.
	// Mode 0644: owner read/write, group and others read.
	RegularFile os.FileMode = 0o644

	// SecureFile is used for log files, which record server URLs, tool names and call failures.
	// Mode 0600: owner read/write only.
	SecureFile os.FileMode = 0o600

	// RegularDir is used for directories created by the docs generators.
	// Mode 0755: owner read/write/execute, group and others read/execute.
	RegularDir os.FileMode = 0o755
)
