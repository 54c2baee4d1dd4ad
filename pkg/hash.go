package dupindex

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// DefaultHashAlgorithm is the digest used to key files when none is configured
const DefaultHashAlgorithm = "md5"

// Size of the buffers used to stream file contents into a hash
const hashBufferSize = 32 * 1024

// hashBufferPool reuses read buffers between files
var hashBufferPool = sync.Pool{
	New: func() interface{} {
		buffer := make([]byte, hashBufferSize)
		return &buffer
	},
}

// HashAlgorithm describes a digest algorithm usable as an index key
type HashAlgorithm struct {
	Name    string
	Size    int // digest size in bytes; hex keys are twice as long
	NewFunc func() hash.Hash
}

// HexLength returns the width of the lowercase hex digest
func (ha *HashAlgorithm) HexLength() int {
	return ha.Size * 2
}

// GetHashAlgorithm returns the hash algorithm for the given name
func GetHashAlgorithm(name string) (*HashAlgorithm, error) {
	switch strings.ToLower(name) {
	case "md5":
		return &HashAlgorithm{Name: "md5", Size: md5.Size, NewFunc: md5.New}, nil
	case "sha1":
		return &HashAlgorithm{Name: "sha1", Size: sha1.Size, NewFunc: sha1.New}, nil
	case "sha256":
		return &HashAlgorithm{Name: "sha256", Size: sha256.Size, NewFunc: sha256.New}, nil
	case "sha512":
		return &HashAlgorithm{Name: "sha512", Size: sha512.Size, NewFunc: sha512.New}, nil
	case "xxh64", "xxhash":
		return &HashAlgorithm{Name: "xxh64", Size: 8, NewFunc: func() hash.Hash { return xxhash.New() }}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", name)
	}
}

// SupportedHashAlgorithms lists the names accepted by GetHashAlgorithm
func SupportedHashAlgorithms() []string {
	return []string{"md5", "sha1", "sha256", "sha512", "xxh64"}
}

// Digester supplies the size and content digest of a file
type Digester interface {
	Digest(path string) (size int64, digest string, err error)
}

// FileDigester hashes files read through an afero filesystem
type FileDigester struct {
	Fs        afero.Fs
	Algorithm *HashAlgorithm
}

// NewFileDigester creates a digester over fs; nil arguments select the OS
// filesystem and DefaultHashAlgorithm.
func NewFileDigester(fs afero.Fs, algorithm *HashAlgorithm) *FileDigester {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if algorithm == nil {
		algorithm, _ = GetHashAlgorithm(DefaultHashAlgorithm)
	}
	return &FileDigester{Fs: fs, Algorithm: algorithm}
}

// Digest implements Digester. The size is the number of bytes hashed.
func (fd *FileDigester) Digest(path string) (int64, string, error) {
	file, err := fd.Fs.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	if osFile, ok := file.(*os.File); ok {
		// advisory only
		_ = unix.Fadvise(int(osFile.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
	}

	bufPtr := hashBufferPool.Get().(*[]byte)
	defer hashBufferPool.Put(bufPtr)

	hasher := fd.Algorithm.NewFunc()
	size, err := io.CopyBuffer(hasher, file, *bufPtr)
	if err != nil {
		return 0, "", fmt.Errorf("failed to hash file %s: %w", path, err)
	}

	return size, hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashStringToHexString hashes a string and returns the hex digest
func HashStringToHexString(data string, algorithm *HashAlgorithm) string {
	hasher := algorithm.NewFunc()
	hasher.Write([]byte(data))
	return hex.EncodeToString(hasher.Sum(nil))
}
