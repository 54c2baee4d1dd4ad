package dupindex

import (
	"errors"
	"testing"
)

func TestHashSubkeyGenerator_Subkey(t *testing.T) {
	generators := []*HashSubkeyGenerator{
		NewHashSubkeyGenerator(""),
		NewHashSubkeyGenerator("empty"),
	}
	keys := []string{"abcdef", "abcdefghijklmnopqrstuvwxyz", ""}

	for _, gen := range generators {
		for _, key := range keys {
			for level := 0; level < 30; level++ {
				subkey, err := gen.Subkey(key, level)
				if err != nil {
					t.Fatalf("Subkey(%q, %d) error = %v", key, level, err)
				}
				want := gen.EmptySubkey()
				if level < len(key) {
					want = key[level : level+1]
				}
				if subkey != want {
					t.Errorf("Subkey(%q, %d) = %q, expected %q", key, level, subkey, want)
				}
			}
		}
	}
}

func TestHashSubkeyGenerator_DefaultEmptySubkey(t *testing.T) {
	gen := NewHashSubkeyGenerator("")
	if gen.EmptySubkey() != DefaultEmptySubkey {
		t.Errorf("Expected empty subkey %q, got %q", DefaultEmptySubkey, gen.EmptySubkey())
	}
}

func TestSubkeyGenerators_NegativeLevel(t *testing.T) {
	generators := map[string]SubkeyGenerator{
		"hash":              NewHashSubkeyGenerator(""),
		"filename":          NewFilenameSubkeyGenerator("", true),
		"filename-no-ext":   NewFilenameSubkeyGenerator("", false),
		"hash-custom-empty": NewHashSubkeyGenerator("-"),
	}

	for name, gen := range generators {
		t.Run(name, func(t *testing.T) {
			for level := -10; level < 0; level++ {
				_, err := gen.Subkey("abcdef", level)
				if !errors.Is(err, ErrInvalidLevel) {
					t.Fatalf("Subkey level %d: expected ErrInvalidLevel, got %v", level, err)
				}
				var levelErr *LevelError
				if !errors.As(err, &levelErr) {
					t.Fatalf("Expected *LevelError, got %T", err)
				}
				if levelErr.Level != level || levelErr.Key != "abcdef" {
					t.Errorf("LevelError carries key %q level %d, expected %q %d", levelErr.Key, levelErr.Level, "abcdef", level)
				}
			}
		})
	}
}

func TestFilenameSubkeyGenerator_WithExtension(t *testing.T) {
	gen := NewFilenameSubkeyGenerator("none", true)

	tests := []struct {
		key   string
		level int
		want  string
	}{
		{"archive.tar.gz", 0, "gz"},
		{"archive.tar.gz", 1, "a"},
		{"archive.tar.gz", 2, "r"},
		{"archive.tar.gz", 7, "e"},
		{"archive.tar.gz", 8, "none"},
		{"README", 0, "none"},
		{"README", 1, "R"},
		{"README", 6, "E"},
		{"README", 7, "none"},
		{"photos/2024/IMG_0001.JPG", 0, "JPG"},
		{"photos/2024/IMG_0001.JPG", 1, "I"},
		{".bashrc", 0, "bashrc"},
		{".bashrc", 1, "none"},
		{"trailing.", 0, "none"},
		{"trailing.", 1, "t"},
		{"dir/", 0, "none"},
		{"dir/", 1, "none"},
		{"ñandú.txt", 1, "ñ"},
		{"ñandú.txt", 5, "ú"},
	}

	for _, tt := range tests {
		got, err := gen.Subkey(tt.key, tt.level)
		if err != nil {
			t.Fatalf("Subkey(%q, %d) error = %v", tt.key, tt.level, err)
		}
		if got != tt.want {
			t.Errorf("Subkey(%q, %d) = %q, expected %q", tt.key, tt.level, got, tt.want)
		}
	}
}

func TestFilenameSubkeyGenerator_WithoutExtension(t *testing.T) {
	gen := NewFilenameSubkeyGenerator("none", false)

	tests := []struct {
		key   string
		level int
		want  string
	}{
		{"archive.tar.gz", 0, "a"},
		{"archive.tar.gz", 6, "e"},
		{"archive.tar.gz", 7, "none"},
		{"some/dir/README", 0, "R"},
		{".bashrc", 0, "none"},
	}

	for _, tt := range tests {
		got, err := gen.Subkey(tt.key, tt.level)
		if err != nil {
			t.Fatalf("Subkey(%q, %d) error = %v", tt.key, tt.level, err)
		}
		if got != tt.want {
			t.Errorf("Subkey(%q, %d) = %q, expected %q", tt.key, tt.level, got, tt.want)
		}
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		filename  string
		name      string
		extension string
	}{
		{"archive.tar.gz", "archive", "gz"},
		{"README", "README", ""},
		{"", "", ""},
		{".bashrc", "", "bashrc"},
		{"a.b", "a", "b"},
	}

	for _, tt := range tests {
		name, ext := splitName(tt.filename)
		if name != tt.name || ext != tt.extension {
			t.Errorf("splitName(%q) = (%q, %q), expected (%q, %q)", tt.filename, name, ext, tt.name, tt.extension)
		}
	}
}
