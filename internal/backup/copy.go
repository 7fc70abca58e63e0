package backup

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/kr/fs"

	"github.com/thoreinstein/packprefs/pkg/fileutil"
)

// copyTree copies every file and directory under src into dst, depth first,
// and returns the number of files copied. dst is created if missing. File
// contents are copied; timestamps and ownership are not preserved.
//
// Symlinks are followed. A directory symlink that resolves to the directory
// being copied or one of its ancestors fails with ErrSymlinkLoop, as does one
// that resolves into dst.
func copyTree(src, dst string) (int, error) {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, errors.Wrapf(err, "creating %s", dst)
	}
	c := &treeCopier{dst: realPath(dst)}
	return c.copy(src, dst)
}

// treeCopier tracks the resolved directories on the current copy path.
type treeCopier struct {
	dst    string
	active []string
}

func (c *treeCopier) copy(src, dst string) (int, error) {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, errors.Wrapf(err, "creating %s", dst)
	}
	c.active = append(c.active, realPath(src))
	defer func() { c.active = c.active[:len(c.active)-1] }()

	copied := 0
	walker := fs.Walk(src)
	for walker.Step() {
		if err := walker.Err(); err != nil {
			return copied, errors.Wrap(err, "walking")
		}

		path := walker.Path()
		if path == src {
			continue
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return copied, errors.Wrapf(err, "relative path of %s", path)
		}
		target := filepath.Join(dst, rel)

		info := walker.Stat()
		if info.Mode()&os.ModeSymlink != 0 {
			// Copy what the link points at.
			resolved, err := os.Stat(path)
			if err != nil {
				return copied, errors.Wrapf(err, "resolving %s", path)
			}
			info = resolved
		}

		if info.IsDir() {
			if walker.Stat().IsDir() {
				if err := os.MkdirAll(target, 0o755); err != nil {
					return copied, errors.Wrapf(err, "creating %s", target)
				}
				continue
			}
			if err := c.checkLoop(path); err != nil {
				return copied, err
			}
			n, err := c.copy(path, target)
			copied += n
			if err != nil {
				return copied, err
			}
			continue
		}

		if _, err := fileutil.CopyFile(path, target); err != nil {
			return copied, errors.Wrapf(err, "copying %s", path)
		}
		copied++
	}

	return copied, nil
}

func (c *treeCopier) checkLoop(link string) error {
	resolved := realPath(link)
	if within(resolved, c.dst) {
		return errors.Wrapf(ErrSymlinkLoop, "%s points into the backup being written", link)
	}
	for _, dir := range c.active {
		if within(dir, resolved) {
			return errors.Wrapf(ErrSymlinkLoop, "%s points at %s", link, resolved)
		}
	}
	return nil
}
