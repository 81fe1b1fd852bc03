package resultsync

import (
	"os"
	"path/filepath"
	"time"

	"github.com/agentstation/resultsync/internal/builds"
	"github.com/agentstation/resultsync/pkg/constants"
	"github.com/agentstation/resultsync/pkg/errors"
	"github.com/agentstation/resultsync/pkg/reconcile"
	"github.com/agentstation/resultsync/pkg/sync"
)

// Config is built once at startup and handed to New. Paths are relative to
// the client filesystem.
type Config struct {
	LocalDir    string `mapstructure:"local_dir" json:"local_dir" yaml:"local_dir"`
	RemoteDir   string `mapstructure:"remote_dir" json:"remote_dir" yaml:"remote_dir"`
	ArchiveDir  string `mapstructure:"archive_dir" json:"archive_dir" yaml:"archive_dir"`
	TempDir     string `mapstructure:"temp_dir" json:"temp_dir" yaml:"temp_dir"`
	ResultsFile string `mapstructure:"results_file" json:"results_file" yaml:"results_file"`

	UseRemoteResults bool          `mapstructure:"use_remote_results" json:"use_remote_results" yaml:"use_remote_results"`
	PublishTimeout   time.Duration `mapstructure:"publish_timeout" json:"publish_timeout" yaml:"publish_timeout"`
	AbsorbConflict   string        `mapstructure:"absorb_conflict" json:"absorb_conflict" yaml:"absorb_conflict"`
	MergeStrategy    string        `mapstructure:"merge_strategy" json:"merge_strategy" yaml:"merge_strategy"`

	CommandsURL   string         `mapstructure:"commands_url" json:"commands_url" yaml:"commands_url"`
	CommandsAuth  string         `mapstructure:"commands_auth" json:"commands_auth" yaml:"commands_auth"`
	CommandsToken string         `mapstructure:"commands_token" json:"-" yaml:"-"`
	Builds        []builds.Build `mapstructure:"builds" json:"builds,omitempty" yaml:"builds,omitempty"`

	// SendToRemote enables Publish when set.
	SendToRemote *RemoteConfig `mapstructure:"send_to_remote" json:"send_to_remote,omitempty" yaml:"send_to_remote,omitempty"`
}

// RemoteConfig describes where Publish delivers the local archive.
type RemoteConfig struct {
	Login     string `mapstructure:"login" json:"login" yaml:"login"`
	Password  string `mapstructure:"password" json:"-" yaml:"-"`
	Host      string `mapstructure:"host" json:"host" yaml:"host"`
	Port      int    `mapstructure:"port" json:"port" yaml:"port"`
	Archive   string `mapstructure:"archive" json:"archive" yaml:"archive"`
	RemoteDir string `mapstructure:"remote_dir" json:"remote_dir" yaml:"remote_dir"`

	KnownHosts            string `mapstructure:"known_hosts" json:"known_hosts,omitempty" yaml:"known_hosts,omitempty"`
	InsecureIgnoreHostKey bool   `mapstructure:"insecure_ignore_host_key" json:"insecure_ignore_host_key" yaml:"insecure_ignore_host_key"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		LocalDir:       constants.DefaultLocalDir,
		RemoteDir:      constants.DefaultRemoteDir,
		ArchiveDir:     constants.DefaultArchiveDir,
		TempDir:        constants.DefaultTempDir,
		PublishTimeout: constants.PublishTimeout,
		AbsorbConflict: string(sync.ConflictOverwrite),
		MergeStrategy:  "priority",
		CommandsURL:    constants.DefaultCommandsURL,
	}
}

// Validate checks required fields and fills defaults in place.
func (c *Config) Validate() error {
	if c.LocalDir == "" {
		c.LocalDir = constants.DefaultLocalDir
	}
	if c.RemoteDir == "" {
		c.RemoteDir = constants.DefaultRemoteDir
	}
	if c.ArchiveDir == "" {
		c.ArchiveDir = constants.DefaultArchiveDir
	}
	if c.TempDir == "" {
		c.TempDir = constants.DefaultTempDir
	}
	if c.ResultsFile == "" {
		c.ResultsFile = filepath.Join(c.LocalDir, constants.ResultsFileName)
	}
	if c.PublishTimeout == 0 {
		c.PublishTimeout = constants.PublishTimeout
	}
	if c.PublishTimeout < 0 {
		return errors.NewConfigError("publish_timeout", "must be positive", nil)
	}
	policy, err := sync.ParseConflictPolicy(c.AbsorbConflict)
	if err != nil {
		return errors.NewConfigError("absorb_conflict", err.Error(), err)
	}
	c.AbsorbConflict = string(policy)
	if _, err := reconcile.StrategyByName(c.MergeStrategy); err != nil {
		return errors.NewConfigError("merge_strategy", err.Error(), err)
	}

	if r := c.SendToRemote; r != nil {
		if r.KnownHosts == "" && !r.InsecureIgnoreHostKey {
			r.KnownHosts = userKnownHosts()
		}
		switch {
		case r.Login == "":
			return errors.NewConfigError("send_to_remote", "login is required", nil)
		case r.Password == "":
			return errors.NewConfigError("send_to_remote", "password is required", nil)
		case r.Host == "":
			return errors.NewConfigError("send_to_remote", "host is required", nil)
		case r.Archive == "":
			return errors.NewConfigError("send_to_remote", "archive name is required", nil)
		case r.KnownHosts == "" && !r.InsecureIgnoreHostKey:
			return errors.NewConfigError("send_to_remote", "known_hosts is required unless insecure_ignore_host_key is set or ~/"+constants.UserKnownHostsFile+" exists", nil)
		}
		if r.Port == 0 {
			r.Port = constants.DefaultSSHPort
		}
		if r.RemoteDir == "" {
			r.RemoteDir = constants.DefaultRemoteDropDir
		}
	}
	return nil
}

// userKnownHosts returns ~/.ssh/known_hosts when that file exists.
func userKnownHosts() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, constants.UserKnownHostsFile)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ""
	}
	return path
}

// resolve makes every path absolute against the working directory.
func (c *Config) resolve() error {
	for _, p := range []*string{&c.LocalDir, &c.RemoteDir, &c.ArchiveDir, &c.TempDir, &c.ResultsFile} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return errors.WrapIO("resolve", *p, err)
		}
		*p = abs
	}
	return nil
}

// clean normalizes every path for use on a caller-supplied filesystem.
func (c *Config) clean() {
	for _, p := range []*string{&c.LocalDir, &c.RemoteDir, &c.ArchiveDir, &c.TempDir, &c.ResultsFile} {
		*p = filepath.Clean(*p)
	}
}
