package dupindex

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populate mirrors a mixed sequence of adds and removes over short and long keys
func populate(t *testing.T, idx *MultiLevelIndex[string]) {
	t.Helper()
	adds := []struct{ key, item string }{
		{"abc", "1,1"},
		{"abd", "1,2"},
		{"adcb", "1,3"},
		{"acdbe", "1,4"},
		{"a", "1,5"},
		{"abcd", "1,6"},
		{"bc", "2,1"},
		{"bcd", "2,2"},
		{"za", "4,5"},
		{"abc", "20,20"},
		{"abc", "20,21"},
		{"abcdefghijkl", "30,30"},
		{"aaa", "31,31"},
		{"0abef", "101,101"},
	}
	for _, a := range adds {
		require.NoError(t, idx.Add(a.key, a.item))
	}
	require.NoError(t, idx.Remove("0abef", "100,100"))

	for _, item := range []string{"1,1", "2,2", "2,3", "the quick brown fox"} {
		require.NoError(t, idx.Add("gghh", item))
	}
	require.NoError(t, idx.Remove("gghh", "2,2"))
}

func TestNewMultiLevelIndex_InvalidMaxLevel(t *testing.T) {
	for _, maxLevel := range []int{0, -1, -100} {
		idx, err := NewMultiLevelIndex[string](maxLevel, nil)
		require.Error(t, err)
		assert.Nil(t, idx)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, maxLevel, cfgErr.Value)
	}
}

func TestNewMultiLevelIndex_DefaultGenerator(t *testing.T) {
	idx, err := NewMultiLevelIndex[int](2, nil)
	require.NoError(t, err)
	require.IsType(t, &HashSubkeyGenerator{}, idx.Generator())
	assert.Equal(t, DefaultEmptySubkey, idx.Generator().EmptySubkey())
	assert.Equal(t, 2, idx.MaxLevel())
	assert.Equal(t, 1, idx.BucketCount())
}

func TestMultiLevelIndex_AddAndFind(t *testing.T) {
	for _, maxLevel := range []int{1, 2, 3, 5} {
		t.Run(fmt.Sprintf("max_level_%d", maxLevel), func(t *testing.T) {
			idx, err := NewMultiLevelIndex[string](maxLevel, nil)
			require.NoError(t, err)
			populate(t, idx)

			expected := map[string][]string{
				"abc":          {"1,1", "20,20", "20,21"},
				"za":           {"4,5"},
				"abcgg":        {},
				"a":            {"1,5"},
				"z":            {},
				"0abef":        {"101,101"},
				"gghh":         {"1,1", "2,3", "the quick brown fox"},
				"abcdefghijkl": {"30,30"},
			}
			for key, want := range expected {
				got, err := idx.FindAll(key)
				require.NoError(t, err)
				assert.Equal(t, want, got, "FindAll(%q)", key)
			}
		})
	}
}

func TestMultiLevelIndex_FindAllCreatesNoBuckets(t *testing.T) {
	idx, err := NewMultiLevelIndex[string](3, nil)
	require.NoError(t, err)
	require.NoError(t, idx.Add("abc", "x"))
	before := idx.BucketCount()

	for _, key := range []string{"abd", "xyz", "", "a", "abcdef"} {
		items, err := idx.FindAll(key)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	}
	require.NoError(t, idx.Remove("qqq", "x"))

	assert.Equal(t, before, idx.BucketCount())
}

func TestMultiLevelIndex_FindAllReturnsCopy(t *testing.T) {
	idx, err := NewMultiLevelIndex[string](2, nil)
	require.NoError(t, err)
	require.NoError(t, idx.Add("ab", "x"))
	require.NoError(t, idx.Add("ab", "y"))

	items, err := idx.FindAll("ab")
	require.NoError(t, err)
	items[0] = "mutated"
	_ = append(items, "extra")

	again, err := idx.FindAll("ab")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, again)
}

func TestMultiLevelIndex_RemoveOneOccurrence(t *testing.T) {
	idx, err := NewMultiLevelIndex[string](2, nil)
	require.NoError(t, err)
	for _, item := range []string{"x", "y", "x", "x"} {
		require.NoError(t, idx.Add("k1", item))
	}

	require.NoError(t, idx.Remove("k1", "x"))
	items, _ := idx.FindAll("k1")
	assert.Equal(t, []string{"y", "x", "x"}, items)

	require.NoError(t, idx.Remove("k1", "x"))
	items, _ = idx.FindAll("k1")
	assert.Equal(t, []string{"y", "x"}, items)

	// absent item, key and path are all no-ops
	require.NoError(t, idx.Remove("k1", "zzz"))
	require.NoError(t, idx.Remove("k2", "x"))
	require.NoError(t, idx.Remove("q", "x"))
	items, _ = idx.FindAll("k1")
	assert.Equal(t, []string{"y", "x"}, items)
}

func TestMultiLevelIndex_SharedPathDistinctKeys(t *testing.T) {
	// with one level only the first character routes, so both keys share a leaf
	idx, err := NewMultiLevelIndex[int](1, nil)
	require.NoError(t, err)
	require.NoError(t, idx.Add("abc", 1))
	require.NoError(t, idx.Add("abd", 2))
	assert.Equal(t, 2, idx.BucketCount())

	abc, _ := idx.FindAll("abc")
	abd, _ := idx.FindAll("abd")
	assert.Equal(t, []int{1}, abc)
	assert.Equal(t, []int{2}, abd)
}

func TestMultiLevelIndex_Entries(t *testing.T) {
	idx, err := NewMultiLevelIndex[string](3, nil)
	require.NoError(t, err)
	populate(t, idx)
	require.NoError(t, idx.Remove("za", "4,5"))

	collect := func() map[string][]string {
		out := make(map[string][]string)
		for key, items := range idx.Entries() {
			_, dup := out[key]
			require.False(t, dup, "key %q yielded twice", key)
			out[key] = items
		}
		return out
	}

	first := collect()
	second := collect()
	assert.Equal(t, first, second)

	assert.NotContains(t, first, "za", "empty key slots are not yielded")
	assert.Equal(t, []string{"1,1", "20,20", "20,21"}, first["abc"])
	assert.Len(t, first, 12)
}

func TestMultiLevelIndex_EntriesOrderAndBreak(t *testing.T) {
	idx, err := NewMultiLevelIndex[int](2, nil)
	require.NoError(t, err)
	for i, key := range []string{"ba", "ab", "bb", "aa"} {
		require.NoError(t, idx.Add(key, i))
	}

	var keys []string
	for key := range idx.Entries() {
		keys = append(keys, key)
	}
	// insertion order of subkeys at every level
	assert.Equal(t, []string{"ba", "bb", "ab", "aa"}, keys)

	seen := 0
	for range idx.Entries() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestMultiLevelIndex_EntriesItemsAreCopies(t *testing.T) {
	idx, err := NewMultiLevelIndex[string](2, nil)
	require.NoError(t, err)
	require.NoError(t, idx.Add("ab", "x"))

	for _, items := range idx.Entries() {
		items[0] = "mutated"
	}
	items, _ := idx.FindAll("ab")
	assert.Equal(t, []string{"x"}, items)
}

// levelRecorder wraps a generator and records the deepest level requested
type levelRecorder struct {
	SubkeyGenerator
	deepest int
}

func (lr *levelRecorder) Subkey(key string, level int) (string, error) {
	lr.deepest = max(lr.deepest, level)
	return lr.SubkeyGenerator.Subkey(key, level)
}

func TestMultiLevelIndex_WalksExactlyMaxLevel(t *testing.T) {
	for _, maxLevel := range []int{1, 4, 7} {
		rec := &levelRecorder{SubkeyGenerator: NewHashSubkeyGenerator("")}
		idx, err := NewMultiLevelIndex[int](maxLevel, rec)
		require.NoError(t, err)

		require.NoError(t, idx.Add("ab", 1))
		assert.Equal(t, maxLevel-1, rec.deepest)
		// root plus one bucket per level
		assert.Equal(t, maxLevel+1, idx.BucketCount())
	}
}

type failingGenerator struct{}

func (failingGenerator) Subkey(key string, level int) (string, error) {
	return "", errors.New("generator unavailable")
}

func (failingGenerator) EmptySubkey() string { return "" }

func TestMultiLevelIndex_GeneratorError(t *testing.T) {
	idx, err := NewMultiLevelIndex[int](2, failingGenerator{})
	require.NoError(t, err)

	require.ErrorContains(t, idx.Add("k", 1), "generator unavailable")
	require.Error(t, idx.Remove("k", 1))
	_, err = idx.FindAll("k")
	require.Error(t, err)
	assert.Equal(t, 1, idx.BucketCount())
}

func TestMultiLevelIndex_PrintStructure(t *testing.T) {
	idx, err := NewMultiLevelIndex[string](2, nil)
	require.NoError(t, err)
	require.NoError(t, idx.Add("ab", "x"))
	require.NoError(t, idx.Add("ab", "y"))
	require.NoError(t, idx.Add("a", "z"))

	var buf bytes.Buffer
	require.NoError(t, idx.PrintStructure(&buf, "-"))

	expected := "a:\n" +
		"-b:\n" +
		"--ab: [x y]\n" +
		"-none:\n" +
		"--a: [z]\n"
	assert.Equal(t, expected, buf.String())
}

// TestMultiLevelIndex_MatchesListModel checks random add/remove sequences
// against a plain map of slices.
func TestMultiLevelIndex_MatchesListModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []byte("ab0f")

	randomKey := func() string {
		b := make([]byte, rng.Intn(6))
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return string(b)
	}

	for run := 0; run < 20; run++ {
		maxLevel := 1 + rng.Intn(5)
		idx, err := NewMultiLevelIndex[int](maxLevel, nil)
		require.NoError(t, err)
		model := make(map[string][]int)

		for op := 0; op < 300; op++ {
			key := randomKey()
			item := rng.Intn(4)
			if rng.Intn(3) == 0 {
				require.NoError(t, idx.Remove(key, item))
				if i := slices.Index(model[key], item); i >= 0 {
					model[key] = slices.Delete(model[key], i, i+1)
				}
				continue
			}
			require.NoError(t, idx.Add(key, item))
			model[key] = append(model[key], item)
		}

		expected := make(map[string][]int)
		for key, items := range model {
			got, err := idx.FindAll(key)
			require.NoError(t, err)
			if len(items) == 0 {
				assert.Empty(t, got, "run %d key %q", run, key)
				continue
			}
			assert.Equal(t, items, got, "run %d key %q", run, key)
			expected[key] = items
		}

		actual := make(map[string][]int)
		for key, items := range idx.Entries() {
			actual[key] = items
		}
		assert.Equal(t, expected, actual, "run %d", run)
	}
}
