package dupindex

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// FileIndexLevels is the bucket depth used by every FileIndex
const FileIndexLevels = 5

// IndexMode selects which attribute of a file is used as its index key
type IndexMode int

const (
	ByDigest IndexMode = iota // key by content digest
	ByName                    // key by base file name
)

// String returns the name accepted by ParseIndexMode
func (m IndexMode) String() string {
	switch m {
	case ByName:
		return "filename"
	default:
		return "digest"
	}
}

// ParseIndexMode parses "digest" or "filename" (case-insensitive, "name" accepted)
func ParseIndexMode(s string) (IndexMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "digest", "hash", "":
		return ByDigest, nil
	case "filename", "name":
		return ByName, nil
	default:
		return ByDigest, fmt.Errorf("unsupported index mode: %s (supported: digest, filename)", s)
	}
}

// FileRecord is the item stored for each indexed file
type FileRecord struct {
	BaseDir      string `json:"base_dir"`
	RelativePath string `json:"relative_path"`
	Size         int64  `json:"size"`
	Digest       string `json:"digest"`
}

// Path returns the path of the file including its base directory
func (r FileRecord) Path() string {
	return filepath.Join(r.BaseDir, r.RelativePath)
}

func (r FileRecord) String() string {
	return fmt.Sprintf("(%s, %s, %d, %s)", r.BaseDir, r.RelativePath, r.Size, r.Digest)
}

// FileIndex groups file records by digest or by name on top of a
// MultiLevelIndex and reports the groups that hold more than one file.
type FileIndex struct {
	mode            IndexMode
	fs              afero.Fs
	algorithm       *HashAlgorithm
	digester        Digester
	emptySubkey     string
	ignore          *IgnoreManager
	continueOnError bool
	index           *MultiLevelIndex[FileRecord]
}

// Option configures a FileIndex
type Option func(*FileIndex)

// WithMode selects the index key; the default is ByDigest
func WithMode(mode IndexMode) Option {
	return func(fi *FileIndex) {
		fi.mode = mode
	}
}

// WithFs sets the filesystem used for enumeration and hashing.
// This is primarily useful for testing with afero.NewMemMapFs().
func WithFs(fs afero.Fs) Option {
	return func(fi *FileIndex) {
		fi.fs = fs
	}
}

// WithHashAlgorithm sets the digest algorithm; the default is md5
func WithHashAlgorithm(algorithm *HashAlgorithm) Option {
	return func(fi *FileIndex) {
		fi.algorithm = algorithm
	}
}

// WithDigester replaces the size and digest provider. When set, WithFs and
// WithHashAlgorithm only affect enumeration.
func WithDigester(d Digester) Option {
	return func(fi *FileIndex) {
		fi.digester = d
	}
}

// WithEmptySubkey sets the subkey used for keys too short for a level
func WithEmptySubkey(subkey string) Option {
	return func(fi *FileIndex) {
		fi.emptySubkey = subkey
	}
}

// WithIgnoreManager skips matching paths during AddFromDirectory
func WithIgnoreManager(im *IgnoreManager) Option {
	return func(fi *FileIndex) {
		fi.ignore = im
	}
}

// WithContinueOnError makes AddFromDirectory index every readable file and
// report the failures together as a *ScanError, instead of stopping at the
// first unreadable file.
func WithContinueOnError() Option {
	return func(fi *FileIndex) {
		fi.continueOnError = true
	}
}

// NewFileIndex creates an empty file index
func NewFileIndex(options ...Option) (*FileIndex, error) {
	fi := &FileIndex{
		mode:        ByDigest,
		emptySubkey: DefaultEmptySubkey,
	}
	for _, option := range options {
		option(fi)
	}

	if fi.fs == nil {
		fi.fs = afero.NewOsFs()
	}
	if fi.algorithm == nil {
		algorithm, err := GetHashAlgorithm(DefaultHashAlgorithm)
		if err != nil {
			return nil, err
		}
		fi.algorithm = algorithm
	}
	if fi.digester == nil {
		fi.digester = NewFileDigester(fi.fs, fi.algorithm)
	}

	var generator SubkeyGenerator
	switch fi.mode {
	case ByName:
		generator = NewFilenameSubkeyGenerator(fi.emptySubkey, true)
	default:
		fi.mode = ByDigest
		generator = NewHashSubkeyGenerator(fi.emptySubkey)
	}

	index, err := NewMultiLevelIndex[FileRecord](FileIndexLevels, generator)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	fi.index = index
	return fi, nil
}

// Mode returns the key the index is built on
func (fi *FileIndex) Mode() IndexMode {
	return fi.mode
}

// Algorithm returns the configured digest algorithm
func (fi *FileIndex) Algorithm() *HashAlgorithm {
	return fi.algorithm
}

// Index exposes the underlying multi-level index
func (fi *FileIndex) Index() *MultiLevelIndex[FileRecord] {
	return fi.index
}

// KeyOf returns the index key for a record
func (fi *FileIndex) KeyOf(record FileRecord) string {
	if fi.mode == ByName {
		return baseName(filepath.ToSlash(record.RelativePath))
	}
	return record.Digest
}

// AddFile digests baseDir/relativePath and adds its record to the index.
// Nothing is added when the file cannot be read.
func (fi *FileIndex) AddFile(baseDir, relativePath string) error {
	fullPath := filepath.Join(baseDir, relativePath)
	size, digest, err := fi.digester.Digest(fullPath)
	if err != nil {
		return &PathError{BaseDir: baseDir, Path: relativePath, Err: err}
	}

	record := FileRecord{
		BaseDir:      baseDir,
		RelativePath: relativePath,
		Size:         size,
		Digest:       digest,
	}
	if err := fi.index.Add(fi.KeyOf(record), record); err != nil {
		return fmt.Errorf("failed to index %s: %w", fullPath, err)
	}

	VerboseLog(2, " - %s: %d %s", relativePath, size, digest)
	VerboseDump("indexed record", record)
	return nil
}

// AddFromDirectory adds every regular file under baseDir matching pattern,
// descending recursively.
func (fi *FileIndex) AddFromDirectory(baseDir, pattern string, includeHidden bool) error {
	defer VerboseEnter()()

	scanID := uuid.New()
	VerboseLog(1, "scan %s: indexing %s (pattern %q, hidden %t, by %s)", scanID, baseDir, pattern, includeHidden, fi.mode)

	files, err := ListFiles(fi.fs, baseDir, pattern, ListOptions{
		Recursive:     true,
		IncludeHidden: includeHidden,
		RelativePaths: true,
		Ignore:        fi.ignore,
	})
	if err != nil {
		return err
	}

	var failures []error
	for _, file := range files {
		if err := fi.AddFile(baseDir, file); err != nil {
			if !fi.continueOnError {
				return err
			}
			VerboseLog(1, "scan %s: skipping %s: %v", scanID, file, err)
			failures = append(failures, err)
		}
	}

	VerboseLog(1, "scan %s: indexed %d of %d files", scanID, len(files)-len(failures), len(files))
	return newScanError(failures)
}

// RemoveFile removes one occurrence of record from the index
func (fi *FileIndex) RemoveFile(record FileRecord) error {
	return fi.index.Remove(fi.KeyOf(record), record)
}

// FindAll returns the records stored under key
func (fi *FileIndex) FindAll(key string) ([]FileRecord, error) {
	return fi.index.FindAll(key)
}

// GetDuplicateFileList returns every key holding two or more records, in
// index iteration order.
func (fi *FileIndex) GetDuplicateFileList() []DuplicateGroup {
	var groups []DuplicateGroup
	for key, records := range fi.index.Entries() {
		count := len(records)
		VerboseLog(3, "(%d) %s: %v", count, key, records)
		if count >= 2 {
			groups = append(groups, DuplicateGroup{Count: count, Key: key, Files: records})
		}
	}
	return groups
}

// PrintStructure writes the bucket tree of the index
func (fi *FileIndex) PrintStructure(w io.Writer) error {
	return fi.index.PrintStructure(w, "-")
}
