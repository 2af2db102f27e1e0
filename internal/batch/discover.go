package batch

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Discover lists the instance files under root. A file root is returned as is. Inside a directory only
// files with one of the extensions are kept, and when some of them contain prefer in their path the
// others are dropped. The result is sorted
func Discover(root string, extensions []string, prefer string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	extensions = lo.Map(extensions, func(extension string, _ int) string { return strings.ToLower(extension) })
	paths := make([]string, 0)
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && lo.Contains(extensions, strings.ToLower(filepath.Ext(path))) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if prefer != "" {
		prefer = strings.ToLower(prefer)
		preferred := lo.Filter(paths, func(path string, _ int) bool {
			return strings.Contains(strings.ToLower(path), prefer)
		})
		if len(preferred) > 0 {
			paths = preferred
		}
	}

	slices.Sort(paths)
	return paths, nil
}
