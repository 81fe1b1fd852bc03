// Package store persists the result set: a single key-ordered, indented
// JSON file shaped {platform: {build: outcome}}.
//
// Saves are atomic with respect to readers: the new content is written to a
// temporary file in the same directory and renamed over the target, so a
// crash mid-write never leaves a truncated results file behind. The store
// assumes a single writer.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentstation/resultsync/pkg/constants"
	"github.com/agentstation/resultsync/pkg/errors"
	"github.com/agentstation/resultsync/pkg/results"
)

// indent matches the layout of results files produced by the test runners.
const indent = "    "

// Store reads and writes the persisted result set.
type Store struct {
	fs   billy.Filesystem
	path string
}

// New returns a store for path on fs.
func New(fs billy.Filesystem, path string) *Store {
	return &Store{fs: fs, path: path}
}

// NewOS returns a store backed by the operating system filesystem.
func NewOS(path string) *Store {
	return New(osfs.New(filepath.Dir(path)), filepath.Base(path))
}

// Path returns the path of the results file relative to the store filesystem.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted set. A missing file yields an empty set; content
// that is not a valid result set yields a *errors.CorruptStoreError.
func (s *Store) Load() (results.Set, error) {
	data, err := util.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
			return results.New(), nil
		}
		return nil, errors.WrapIO("read", s.path, err)
	}
	return Decode(s.path, data)
}

// Decode parses result set JSON. name is used in error messages only.
func Decode(name string, data []byte) (results.Set, error) {
	set := results.New()
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, errors.NewCorruptStoreError(name, err)
	}
	if set == nil {
		// literal null
		return results.New(), nil
	}
	for platform, builds := range set {
		if builds == nil {
			set[platform] = map[string]results.Outcome{}
		}
	}
	return set, nil
}

// Encode renders set in the persisted layout: sorted keys, indented.
func Encode(set results.Set) ([]byte, error) {
	if set == nil {
		set = results.New()
	}
	data, err := json.MarshalIndent(set, "", indent)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Save overwrites the persisted set atomically.
func (s *Store) Save(set results.Set) (err error) {
	data, err := Encode(set)
	if err != nil {
		return errors.WrapIO("encode", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := s.fs.TempFile(dir, "."+filepath.Base(s.path)+".tmp-")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", tmpName, err)
	}
	if syncer, ok := tmp.(interface{ Sync() error }); ok {
		if err = syncer.Sync(); err != nil {
			_ = tmp.Close()
			return errors.WrapIO("sync", tmpName, err)
		}
	}
	if err = tmp.Close(); err != nil {
		return errors.WrapIO("close", tmpName, err)
	}
	if err = s.fs.Rename(tmpName, s.path); err != nil {
		return errors.WrapIO("rename", s.path, err)
	}
	return nil
}

// Update loads the set, applies fn and saves the result. Nothing is saved
// when fn returns an error.
func (s *Store) Update(fn func(results.Set) error) error {
	set, err := s.Load()
	if err != nil {
		return err
	}
	if err := fn(set); err != nil {
		return err
	}
	return s.Save(set)
}

// Acceptable loads the set and reports whether every outcome is acceptable.
func (s *Store) Acceptable() (bool, error) {
	set, err := s.Load()
	if err != nil {
		return false, err
	}
	return IsAcceptable(set), nil
}

// IsAcceptable reports whether every outcome in set is NO TEST, SKIP or OK.
func IsAcceptable(set results.Set) bool {
	return set.Acceptable()
}
