package settings

import (
	"cmp"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind distinguishes character settings from account settings.
type Kind int

const (
	// KindCharacter marks a core_char_ file.
	KindCharacter Kind = iota
	// KindUser marks a core_user_ file.
	KindUser
)

// Filename grammar.
const (
	CharPrefix  = "core_char_"
	UserPrefix  = "core_user_"
	Ext         = ".dat"
	Placeholder = "_"
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCharacter:
		return "character"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses "character" or "user".
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "character", "char":
		*k = KindCharacter
	case "user", "account":
		*k = KindUser
	default:
		return errors.Newf("unknown settings kind %q", text)
	}
	return nil
}

// Prefix returns the filename prefix for the kind.
func (k Kind) Prefix() string {
	if k == KindUser {
		return UserPrefix
	}
	return CharPrefix
}

// File is one classified settings file.
type File struct {
	// Path is the absolute location of the file.
	Path string `json:"path"`
	// ID is the character or account ID; 0 for the template file.
	ID uint64 `json:"id"`
	// Kind is the file category.
	Kind Kind `json:"kind"`
	// IsDefault is true only for the template file.
	IsDefault bool `json:"is_default"`
}

// Name returns the base filename.
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// Match is the result of parsing a single filename.
type Match struct {
	Kind      Kind
	ID        uint64
	IsDefault bool
}

// ParseName matches name against the settings filename grammar.
// The boolean is false when the name is not a settings file, including names
// whose identity segment is not a valid unsigned 64-bit integer.
func ParseName(name string) (Match, bool) {
	if id, def, ok := parseKind(name, CharPrefix); ok {
		return Match{Kind: KindCharacter, ID: id, IsDefault: def}, true
	}
	if id, def, ok := parseKind(name, UserPrefix); ok {
		return Match{Kind: KindUser, ID: id, IsDefault: def}, true
	}
	return Match{}, false
}

func parseKind(name, prefix string) (id uint64, isDefault, ok bool) {
	rest, found := strings.CutPrefix(name, prefix)
	if !found {
		return 0, false, false
	}
	segment, found := strings.CutSuffix(rest, Ext)
	if !found {
		return 0, false, false
	}

	if segment == "" || segment == Placeholder {
		return 0, true, true
	}

	// ParseUint accepts only digits here: no sign, no spaces, no underscores.
	for i := 0; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return 0, false, false
		}
	}
	id, err := strconv.ParseUint(segment, 10, 64)
	if err != nil {
		return 0, false, false
	}
	return id, false, true
}

// FileName builds the settings filename for kind and id.
// A zero id yields the template filename.
func FileName(kind Kind, id uint64) string {
	if id == 0 {
		return kind.Prefix() + Placeholder + Ext
	}
	return kind.Prefix() + strconv.FormatUint(id, 10) + Ext
}

// Classify returns the settings files in dir.
//
// A directory that does not exist yields an empty result and no error. Entries
// that are not regular files, or whose names do not match the grammar, are
// skipped. The result lists non-default files by ascending ID, followed by the
// default files.
func Classify(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []File{}, nil
		}
		return nil, errors.Wrapf(err, "reading settings directory %s", dir)
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		m, ok := ParseName(entry.Name())
		if !ok {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if !isRegular(entry, path) {
			continue
		}

		files = append(files, File{
			Path:      path,
			ID:        m.ID,
			Kind:      m.Kind,
			IsDefault: m.IsDefault,
		})
	}

	Sort(files)
	return files, nil
}

// isRegular reports whether entry is a regular file, following symlinks.
func isRegular(entry fs.DirEntry, path string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Sort orders files in place: non-default before default, then by ascending ID.
// The sort is stable, so equal keys keep directory order.
func Sort(files []File) {
	slices.SortStableFunc(files, func(a, b File) int {
		if a.IsDefault != b.IsDefault {
			if a.IsDefault {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// OfKind returns the files of the given kind, preserving order.
func OfKind(files []File, kind Kind) []File {
	var out []File
	for _, f := range files {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Count returns the number of files of each kind.
func Count(files []File) (characters, users int) {
	for _, f := range files {
		switch f.Kind {
		case KindCharacter:
			characters++
		case KindUser:
			users++
		}
	}
	return characters, users
}
