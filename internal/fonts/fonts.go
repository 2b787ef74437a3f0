package fonts

import (
	"errors"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// Exts are the file extensions treated as fonts.
var Exts = []string{".ttf", ".otf"}

// Scan returns the slash-separated paths of every font file under dir in fsys, sorted.
// A missing dir yields no paths and no error.
func Scan(fsys fs.FS, dir string) ([]string, error) {
	var out []string
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() && slices.Contains(Exts, strings.ToLower(path.Ext(p))) {
			out = append(out, p)
		}
		return nil
	})
	slices.Sort(out)
	return out, err
}

// Pick returns the font whose base name (without extension) matches preferred, case-insensitively,
// or the first font when nothing matches. It reports false when fonts is empty.
func Pick(fonts []string, preferred string) (string, bool) {
	if len(fonts) == 0 {
		return "", false
	}
	for _, f := range fonts {
		base := path.Base(f)
		if strings.EqualFold(strings.TrimSuffix(base, path.Ext(base)), preferred) {
			return f, true
		}
	}
	return fonts[0], true
}
