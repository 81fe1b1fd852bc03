// Package archive packs directory trees into zip containers and unpacks
// them back, over a go-billy filesystem.
package archive

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/klauspost/compress/zip"

	"github.com/agentstation/resultsync/pkg/constants"
	"github.com/agentstation/resultsync/pkg/errors"
)

// Codec packs and unpacks archives.
type Codec interface {
	// Pack writes every file under srcDir to outPath. Entry names are
	// relative to relDir.
	Pack(srcDir, relDir, outPath string) error

	// Unpack extracts archivePath into destDir.
	Unpack(archivePath, destDir string) error
}

// Zip is a Codec producing deflate-compressed zip files.
type Zip struct {
	fs billy.Filesystem
}

// NewZip returns a zip codec operating on fs.
func NewZip(fs billy.Filesystem) *Zip {
	return &Zip{fs: fs}
}

// Pack implements Codec.
func (z *Zip) Pack(srcDir, relDir, outPath string) (err error) {
	if dir := filepath.Dir(outPath); dir != "." {
		if err := z.fs.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapArchive("pack", outPath, err)
		}
	}

	out, err := z.fs.Create(outPath)
	if err != nil {
		return errors.WrapArchive("pack", outPath, err)
	}
	defer func() {
		if err != nil {
			_ = z.fs.Remove(outPath)
		}
	}()

	zw := zip.NewWriter(out)
	walkErr := util.Walk(z.fs, srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Clean(path) == filepath.Clean(outPath) {
			return nil
		}
		name, err := filepath.Rel(relDir, path)
		if err != nil {
			return err
		}
		return z.add(zw, path, filepath.ToSlash(name), info)
	})

	err = errors.Join(walkErr, zw.Close(), out.Close())
	if err != nil {
		return errors.WrapArchive("pack", outPath, err)
	}
	return nil
}

func (z *Zip) add(zw *zip.Writer, path, name string, info os.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	f, err := z.fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

// Unpack implements Codec. Entries that would land outside destDir are
// rejected.
func (z *Zip) Unpack(archivePath, destDir string) error {
	info, err := z.fs.Stat(archivePath)
	if err != nil {
		return errors.WrapArchive("unpack", archivePath, err)
	}

	f, err := z.fs.Open(archivePath)
	if err != nil {
		return errors.WrapArchive("unpack", archivePath, err)
	}
	defer f.Close()

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return errors.WrapArchive("unpack", archivePath, err)
	}

	if err := z.fs.MkdirAll(destDir, constants.DirPermissions); err != nil {
		return errors.WrapArchive("unpack", archivePath, err)
	}

	for _, entry := range zr.File {
		if err := z.extract(entry, destDir); err != nil {
			return errors.WrapArchive("unpack", archivePath, err)
		}
	}
	return nil
}

func (z *Zip) extract(entry *zip.File, destDir string) error {
	name := filepath.FromSlash(strings.TrimSuffix(entry.Name, "/"))
	if name == "" || !filepath.IsLocal(name) {
		return errors.NewValidationError("entry", entry.Name, "entry escapes the destination directory")
	}
	target := filepath.Join(destDir, name)

	if entry.FileInfo().IsDir() {
		return z.fs.MkdirAll(target, constants.DirPermissions)
	}
	if err := z.fs.MkdirAll(filepath.Dir(target), constants.DirPermissions); err != nil {
		return err
	}

	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := z.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
