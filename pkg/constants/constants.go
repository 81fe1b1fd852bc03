// Package constants provides shared constants used throughout the resultsync codebase.
// This includes timeouts, file permissions, and the default on-disk layout of
// a result directory.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// PublishTimeout bounds the transfer of the local archive to the remote host
	PublishTimeout = 180 * time.Second

	// DialTimeout is the timeout for establishing the SSH connection
	DialTimeout = 60 * time.Second

	// DefaultHTTPTimeout is the standard timeout for fetching the build list
	DefaultHTTPTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 30 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Default layout of the working directory.
const (
	// DefaultLocalDir holds logs/, results/ and the results file of this machine
	DefaultLocalDir = "./local"

	// DefaultRemoteDir is where peers drop their archives
	DefaultRemoteDir = "./remote"

	// DefaultArchiveDir receives timestamped retention archives
	DefaultArchiveDir = "./archive"

	// DefaultTempDir is the scratch directory used while absorbing an archive
	DefaultTempDir = "./temp"

	// ResultsFileName is the name of the persisted result store inside the local dir
	ResultsFileName = "results.json"

	// LogsDirName and ResultsDirName are the per-build file trees moved on absorb
	LogsDirName    = "logs"
	ResultsDirName = "results"

	// ArchiveExt is the extension of packed archives
	ArchiveExt = ".zip"

	// ArchiveTimeLayout names retention archives (second precision)
	ArchiveTimeLayout = "20060102_150405"

	// ArchivePrefix prefixes retention archive names
	ArchivePrefix = "results_"
)

// Remote delivery defaults.
const (
	// DefaultSSHPort is used when send_to_remote omits a port
	DefaultSSHPort = 22

	// DefaultRemoteDropDir is the directory on the remote host receiving archives
	DefaultRemoteDropDir = "/opt/delivery_checker/remote"

	// UserKnownHostsFile is the known_hosts file looked up under $HOME
	// when send_to_remote names none
	UserKnownHostsFile = ".ssh/known_hosts"
)

// DefaultCommandsURL serves the versions document used to enumerate expected builds.
const DefaultCommandsURL = "https://www.tarantool.io/api/tarantool/info/versions/"
