package dupindex

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
)

// bucketKind tags a bucket as interior (fans out by subkey) or leaf (holds item lists)
type bucketKind uint8

const (
	interiorBucket bucketKind = iota
	leafBucket
)

// bucket is one node of the index tree. Interior buckets map subkeys to deeper
// buckets; leaf buckets sit at depth maxLevel and map full keys to item lists.
// Both keep insertion order so traversal is reproducible.
type bucket[T comparable] struct {
	kind     bucketKind
	subkeys  []string
	children map[string]*bucket[T]
	keys     []string
	items    map[string][]T
}

func newBucket[T comparable](kind bucketKind) *bucket[T] {
	if kind == leafBucket {
		return &bucket[T]{kind: kind, items: make(map[string][]T)}
	}
	return &bucket[T]{kind: kind, children: make(map[string]*bucket[T])}
}

// MultiLevelIndex stores items in buckets nested maxLevel deep, navigated by the
// subkeys a SubkeyGenerator derives from each item's key. Buckets are created on
// first use and never pruned.
//
// A MultiLevelIndex is not safe for concurrent use.
type MultiLevelIndex[T comparable] struct {
	maxLevel  int
	generator SubkeyGenerator
	root      *bucket[T]
	buckets   int
}

// NewMultiLevelIndex creates an empty index. A nil generator selects a
// HashSubkeyGenerator with the default empty subkey.
func NewMultiLevelIndex[T comparable](maxLevel int, generator SubkeyGenerator) (*MultiLevelIndex[T], error) {
	if maxLevel <= 0 {
		return nil, &ConfigError{Field: "max level", Value: maxLevel}
	}
	if generator == nil {
		generator = NewHashSubkeyGenerator(DefaultEmptySubkey)
	}

	return &MultiLevelIndex[T]{
		maxLevel:  maxLevel,
		generator: generator,
		root:      newBucket[T](interiorBucket),
		buckets:   1,
	}, nil
}

// MaxLevel returns the nesting depth of the leaf buckets
func (mli *MultiLevelIndex[T]) MaxLevel() int {
	return mli.maxLevel
}

// Generator returns the subkey generator the index was built with
func (mli *MultiLevelIndex[T]) Generator() SubkeyGenerator {
	return mli.generator
}

// BucketCount returns the number of buckets in the tree, root included
func (mli *MultiLevelIndex[T]) BucketCount() int {
	return mli.buckets
}

// walk follows the subkeys of key down to its leaf bucket. With create set,
// missing buckets are added on the way; otherwise a nil bucket is returned as
// soon as one is absent.
func (mli *MultiLevelIndex[T]) walk(key string, create bool) (*bucket[T], error) {
	current := mli.root
	for level := 0; level < mli.maxLevel; level++ {
		subkey, err := mli.generator.Subkey(key, level)
		if err != nil {
			return nil, fmt.Errorf("failed to derive subkey: %w", err)
		}

		next, ok := current.children[subkey]
		if !ok {
			if !create {
				return nil, nil
			}
			kind := interiorBucket
			if level == mli.maxLevel-1 {
				kind = leafBucket
			}
			next = newBucket[T](kind)
			current.children[subkey] = next
			current.subkeys = append(current.subkeys, subkey)
			mli.buckets++
		}
		current = next
	}
	return current, nil
}

// Add appends item to the list stored under key
func (mli *MultiLevelIndex[T]) Add(key string, item T) error {
	leaf, err := mli.walk(key, true)
	if err != nil {
		return err
	}

	if _, exists := leaf.items[key]; !exists {
		leaf.keys = append(leaf.keys, key)
	}
	leaf.items[key] = append(leaf.items[key], item)
	return nil
}

// Remove deletes the first occurrence of item from the list stored under key.
// An absent bucket, key or item is not an error.
func (mli *MultiLevelIndex[T]) Remove(key string, item T) error {
	leaf, err := mli.walk(key, false)
	if err != nil || leaf == nil {
		return err
	}

	list := leaf.items[key]
	if i := slices.Index(list, item); i >= 0 {
		leaf.items[key] = slices.Delete(list, i, i+1)
	}
	return nil
}

// FindAll returns a copy of the items stored under key, or an empty slice.
// It never creates buckets.
func (mli *MultiLevelIndex[T]) FindAll(key string) ([]T, error) {
	leaf, err := mli.walk(key, false)
	if err != nil {
		return nil, err
	}
	if leaf == nil || len(leaf.items[key]) == 0 {
		return []T{}, nil
	}
	return slices.Clone(leaf.items[key]), nil
}

// Entries returns a sequence of (key, items) for every non-empty key in the
// leaf buckets. Each range over the sequence is an independent traversal and
// each items slice is a copy.
func (mli *MultiLevelIndex[T]) Entries() iter.Seq2[string, []T] {
	return func(yield func(string, []T) bool) {
		stack := []*bucket[T]{mli.root}
		for len(stack) > 0 {
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if b.kind == leafBucket {
				for _, key := range b.keys {
					items := b.items[key]
					if len(items) == 0 {
						continue
					}
					if !yield(key, slices.Clone(items)) {
						return
					}
				}
				continue
			}

			// reversed so children pop in insertion order
			for i := len(b.subkeys) - 1; i >= 0; i-- {
				stack = append(stack, b.children[b.subkeys[i]])
			}
		}
	}
}

// PrintStructure writes the bucket tree, one subkey per line, prefixed by
// indent repeated once per level. Leaf keys are followed by their items.
func (mli *MultiLevelIndex[T]) PrintStructure(w io.Writer, indent string) error {
	type frame struct {
		label string
		b     *bucket[T]
		depth int
	}

	var stack []frame
	push := func(b *bucket[T], depth int) {
		for i := len(b.subkeys) - 1; i >= 0; i-- {
			sub := b.subkeys[i]
			stack = append(stack, frame{label: sub, b: b.children[sub], depth: depth})
		}
	}
	push(mli.root, 0)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, err := fmt.Fprintf(w, "%s%s:\n", strings.Repeat(indent, f.depth), f.label); err != nil {
			return err
		}
		if f.b.kind == interiorBucket {
			push(f.b, f.depth+1)
			continue
		}
		for _, key := range f.b.keys {
			if _, err := fmt.Fprintf(w, "%s%s: %v\n", strings.Repeat(indent, f.depth+1), key, f.b.items[key]); err != nil {
				return err
			}
		}
	}
	return nil
}
