// Package fileutil provides file system utilities including atomic write and
// atomic replace operations.
package fileutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// TempExt is the extension that marks an in-flight copy next to its target.
const TempExt = ".tmp"

// AtomicWriteFile writes data to a file atomically using a temp file + rename pattern.
// This ensures interrupted writes leave the original file intact.
//
// The caller is responsible for ensuring the parent directory exists.
// Permissions are applied to the final file via the perm parameter.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Same directory keeps the rename on one filesystem.
	tmp, err := os.CreateTemp(dir, ".packprefs-atomic-*"+TempExt)
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	renamed = true

	return nil
}

// TempPath returns the reserved temporary path for dst: the same directory and
// base name with the extension replaced by TempExt.
//
//	/s/core_char_200.dat -> /s/core_char_200.tmp
func TempPath(dst string) string {
	return strings.TrimSuffix(dst, filepath.Ext(dst)) + TempExt
}

// CopyFile copies the contents of src to dst, creating or truncating dst.
// File metadata is not preserved beyond the permission bits of a new file.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src) // #nosec G304 - path comes from a directory scan
	if err != nil {
		return 0, errors.Wrap(err, "opening source file")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat source file")
	}
	if info.IsDir() {
		return 0, errors.Newf("%s is a directory", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, errors.Wrap(err, "creating destination file")
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, errors.Wrap(err, "copying file")
	}

	if err := out.Close(); err != nil {
		return n, errors.Wrap(err, "closing destination file")
	}

	return n, nil
}

// AtomicCopyFile replaces dst with the contents of src.
// The bytes are first copied to TempPath(dst) and then renamed over dst, so a
// concurrent reader sees either the old or the new file and never a partial
// one. On failure the temp file is removed and dst is left untouched.
func AtomicCopyFile(src, dst string) error {
	tmp := TempPath(dst)

	if _, err := CopyFile(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "copying to temp file %s", tmp)
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "renaming temp file to %s", dst)
	}

	return nil
}
