// Package dupindex finds duplicate files by grouping them in a multi-level
// bucket index keyed by content digest or by file name.
//
// # Core API
//
// FileIndex scans directories and reports keys shared by more than one file:
//
//	fi, err := dupindex.NewFileIndex(dupindex.WithMode(dupindex.ByDigest))
//	if err != nil {
//		return err
//	}
//	if err := fi.AddFromDirectory("/path/to/dir", "*", false); err != nil {
//		return err
//	}
//	for _, group := range fi.GetDuplicateFileList() {
//		fmt.Printf("%s: %v\n", group.Key, group.Paths())
//	}
//
// # Multi-level index
//
// MultiLevelIndex is the container underneath. Each key is split into one
// subkey per level by a SubkeyGenerator, and items live in the leaf bucket at
// the end of that path:
//
//	idx, _ := dupindex.NewMultiLevelIndex[string](3, dupindex.NewHashSubkeyGenerator("none"))
//	idx.Add("abc", "first")
//	idx.Add("abc", "second")
//	items, _ := idx.FindAll("abc") // [first second]
//
// HashSubkeyGenerator uses the nth character of the key; FilenameSubkeyGenerator
// uses the extension and then the characters of the base name. Any other
// derivation can be plugged in by implementing SubkeyGenerator.
//
// Neither type is safe for concurrent mutation.
//
// # Configuration
//
// Config reads an ini file (see DefaultConfigPath) and verbose output is
// controlled with SetVerboseLevel and SetDebugFlags.
package dupindex
