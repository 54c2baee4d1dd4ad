package dupindex

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultEmptySubkey is the subkey used when a key has nothing at the requested level
const DefaultEmptySubkey = "none"

// SubkeyGenerator derives the per-level subkey used to navigate a MultiLevelIndex.
// Implementations must be deterministic and must reject negative levels with a
// *LevelError before looking at the key.
type SubkeyGenerator interface {
	Subkey(key string, level int) (string, error)
	EmptySubkey() string
}

// checkLevel validates a level before any key data is read
func checkLevel(key string, level int) error {
	if level < 0 {
		return &LevelError{Key: key, Level: level}
	}
	return nil
}

// subkeyFromString returns the level'th character of s, or empty when s is too short
func subkeyFromString(s string, level int, empty string) string {
	if level < len(s) && isASCII(s) {
		return s[level : level+1]
	}
	i := 0
	for _, r := range s {
		if i == level {
			return string(r)
		}
		i++
	}
	return empty
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// HashSubkeyGenerator uses the nth character of the key as the subkey.
// Suited to fixed-width hex digests.
type HashSubkeyGenerator struct {
	empty string
}

// NewHashSubkeyGenerator creates a digest based generator; an empty sentinel
// selects DefaultEmptySubkey.
func NewHashSubkeyGenerator(emptySubkey string) *HashSubkeyGenerator {
	if emptySubkey == "" {
		emptySubkey = DefaultEmptySubkey
	}
	return &HashSubkeyGenerator{empty: emptySubkey}
}

// Subkey implements SubkeyGenerator
func (g *HashSubkeyGenerator) Subkey(key string, level int) (string, error) {
	if err := checkLevel(key, level); err != nil {
		return "", err
	}
	return subkeyFromString(key, level, g.empty), nil
}

// EmptySubkey implements SubkeyGenerator
func (g *HashSubkeyGenerator) EmptySubkey() string {
	return g.empty
}

// FilenameSubkeyGenerator derives subkeys from the base name of a path.
// With UseExtension the extension is the level 0 subkey and the name
// characters follow from level 1.
type FilenameSubkeyGenerator struct {
	UseExtension bool
	empty        string
}

// NewFilenameSubkeyGenerator creates a file name based generator
func NewFilenameSubkeyGenerator(emptySubkey string, useExtension bool) *FilenameSubkeyGenerator {
	if emptySubkey == "" {
		emptySubkey = DefaultEmptySubkey
	}
	return &FilenameSubkeyGenerator{UseExtension: useExtension, empty: emptySubkey}
}

// Subkey implements SubkeyGenerator
func (g *FilenameSubkeyGenerator) Subkey(key string, level int) (string, error) {
	if err := checkLevel(key, level); err != nil {
		return "", err
	}

	name, extension := splitName(baseName(key))
	if !g.UseExtension {
		return subkeyFromString(name, level, g.empty), nil
	}
	if level == 0 {
		if extension == "" {
			return g.empty, nil
		}
		return extension, nil
	}
	return subkeyFromString(name, level-1, g.empty), nil
}

// EmptySubkey implements SubkeyGenerator
func (g *FilenameSubkeyGenerator) EmptySubkey() string {
	return g.empty
}

// baseName returns the text after the last path separator ("dir/" has an empty base name)
func baseName(path string) string {
	i := strings.LastIndexByte(path, '/')
	if filepath.Separator != '/' {
		if j := strings.LastIndexByte(path, filepath.Separator); j > i {
			i = j
		}
	}
	return path[i+1:]
}

// splitName splits "archive.tar.gz" into ("archive", "gz")
func splitName(filename string) (name, extension string) {
	first := strings.IndexByte(filename, '.')
	if first < 0 {
		return filename, ""
	}
	return filename[:first], filename[strings.LastIndexByte(filename, '.')+1:]
}
