package paths

import (
	"path/filepath"
	"strings"
)

// File and directory names inside an osu! stable installation.
const (
	ExecutableName      = "osu!.exe"
	CompanionLibrary    = "OpenTK.dll"
	DatabaseFileName    = "osu!.db"
	StashFileName       = "osu!switcher.ini"
	LegacyStashFileName = "server-account-switcher.ini"
	RepairMarkerName    = ".require_update"
	LogsDirName         = "Logs"
	AuthLogFileName     = "osu!auth.log"
	BackupDirName       = "osu!switcher-backup"
	IconsDirName        = "icons"
)

// PathBuilder provides methods to construct paths relative to an installation directory.
type PathBuilder struct {
	installDir string
}

// New creates a new PathBuilder for the given installation directory.
func New(installDir string) *PathBuilder {
	return &PathBuilder{installDir: installDir}
}

// InstallDir returns the installation directory.
func (p *PathBuilder) InstallDir() string {
	return p.installDir
}

// Executable returns the path to osu!.exe.
func (p *PathBuilder) Executable() string {
	return filepath.Join(p.installDir, ExecutableName)
}

// Library returns the path to the companion library used to tell stable from lazer.
func (p *PathBuilder) Library() string {
	return filepath.Join(p.installDir, CompanionLibrary)
}

// UserConfig returns the per-OS-user configuration holding the active credentials.
func (p *PathBuilder) UserConfig(username string) string {
	return filepath.Join(p.installDir, "osu!."+SanitizeUsername(username)+".cfg")
}

// Stash returns the path of the stash file.
func (p *PathBuilder) Stash() string {
	return filepath.Join(p.installDir, StashFileName)
}

// LegacyStash returns the pre-rename stash file path.
func (p *PathBuilder) LegacyStash() string {
	return filepath.Join(p.installDir, LegacyStashFileName)
}

// Database returns the path of osu!.db.
func (p *PathBuilder) Database() string {
	return filepath.Join(p.installDir, DatabaseFileName)
}

// AuthLog returns the path of the authentication log.
func (p *PathBuilder) AuthLog() string {
	return filepath.Join(p.installDir, LogsDirName, AuthLogFileName)
}

// RepairMarker returns the path of the pending repair flag.
func (p *PathBuilder) RepairMarker() string {
	return filepath.Join(p.installDir, RepairMarkerName)
}

// BackupDir returns the directory where swap snapshots are stored.
func (p *PathBuilder) BackupDir() string {
	return filepath.Join(p.installDir, BackupDirName)
}

// IconsDir returns the directory holding server icons.
func (p *PathBuilder) IconsDir() string {
	return filepath.Join(p.installDir, IconsDirName)
}

// Icon returns the path of the icon for a server.
func (p *PathBuilder) Icon(server string) string {
	return filepath.Join(p.IconsDir(), server+".ico")
}

// SanitizeUsername strips a Windows "DOMAIN\" prefix from an OS account name.
func SanitizeUsername(username string) string {
	if idx := strings.LastIndexAny(username, `\/`); idx >= 0 {
		return username[idx+1:]
	}
	return username
}
