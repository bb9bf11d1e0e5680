// Package buildinfo holds the values shown on the about screen and by --version.
package buildinfo

// Version is overridden at link time with -ldflags "-X .../buildinfo.Version=..."
var Version = "1.0"

const (
	Name      = "Re-Archive"
	Creator   = "ReJaad"
	Copyright = "© 2025 ReJaad."
	Website   = "https://github.com/rejaad/Re-Archive"
)
