package dupindex

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	glob "github.com/pachyderm/ohmyglob"
	"github.com/spf13/afero"
)

// ListOptions controls ListFiles
type ListOptions struct {
	Recursive     bool           // descend into subdirectories
	IncludeHidden bool           // include entries whose name starts with "."
	RelativePaths bool           // return paths relative to the root
	Ignore        *IgnoreManager // optional ignore patterns, matched against relative paths
}

// ListFiles returns the regular files under root whose name matches pattern.
// A pattern containing "/" is matched against the slash separated path
// relative to root instead of the base name; "**" matches across directories.
// Hidden files and directories are skipped unless opts.IncludeHidden is set or
// the pattern itself names a hidden file. Results are in lexical walk order.
func ListFiles(fs afero.Fs, root, pattern string, opts ListOptions) ([]string, error) {
	defer VerboseEnter()()

	if fs == nil {
		fs = afero.NewOsFs()
	}
	if pattern == "" {
		pattern = "*"
	}

	matcher, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	matchRelPath := strings.Contains(pattern, "/")
	hiddenPattern := strings.HasPrefix(path.Base(pattern), ".")

	cleanRoot := filepath.Clean(root)
	info, err := fs.Stat(cleanRoot)
	if err != nil {
		return nil, &PathError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &PathError{Path: root, Err: errors.New("not a directory")}
	}

	if IsDebugEnabled("scan") {
		VerboseLog(3, "ListFiles: root=%s pattern=%s recursive=%t hidden=%t", cleanRoot, pattern, opts.Recursive, opts.IncludeHidden)
	}

	var files []string
	err = afero.Walk(fs, cleanRoot, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if p == cleanRoot {
				return err
			}
			VerboseLog(1, "skipping unreadable entry %s: %v", p, err)
			return nil
		}
		if p == cleanRoot {
			return nil
		}

		rel, err := filepath.Rel(cleanRoot, p)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)
		hidden := strings.HasPrefix(info.Name(), ".")

		if info.IsDir() {
			if !opts.Recursive || (hidden && !opts.IncludeHidden) || opts.Ignore.ShouldIgnore(relSlash+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}
		if hidden && !opts.IncludeHidden && !hiddenPattern {
			return nil
		}
		if opts.Ignore.ShouldIgnore(relSlash) {
			if IsDebugEnabled("scan") {
				VerboseLog(3, "ListFiles: ignored %s", relSlash)
			}
			return nil
		}

		subject := info.Name()
		if matchRelPath {
			subject = relSlash
		}
		if !matcher.Match(subject) {
			return nil
		}

		if opts.RelativePaths {
			files = append(files, rel)
		} else {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, &PathError{Path: root, Err: err}
	}

	VerboseLog(2, "found %d files matching %q under %s", len(files), pattern, cleanRoot)
	return files, nil
}
