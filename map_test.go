package persistent

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapInsertEraseFind(t *testing.T) {
	t.Parallel()
	m := NewMap()
	require.NoError(t, m.Insert(10, "a"))
	require.NoError(t, m.Insert(5, "b"))
	require.NoError(t, m.Insert(15, "c"))

	var v string
	found, err := m.Find(5, &v)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "b", v)

	erased, err := m.Erase(10)
	require.NoError(t, err)
	require.True(t, erased)
	found, err = m.Find(10, nil)
	require.NoError(t, err)
	require.False(t, found)

	m.Undo(1, false)
	found, err = m.Find(10, &v)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "a", v)
}

func TestMapSetValuePromotesToInsert(t *testing.T) {
	t.Parallel()
	m := NewMap()
	require.NoError(t, m.SetValue(1, "one"))
	var v string
	found, err := m.Find(1, &v)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "one", v)
	require.Equal(t, 1, m.Len())
	require.Equal(t, 2, m.LastVersion())
}

func TestMapInsertReplaces(t *testing.T) {
	t.Parallel()
	m := NewMap()
	require.NoError(t, m.Insert(1, "one"))
	require.NoError(t, m.Insert(1, "uno"))
	var v string
	found, err := m.Find(1, &v)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "uno", v)
	require.Equal(t, 1, m.Len())
	require.Equal(t, 3, m.LastVersion(), "replacing still produces a version")
}

func TestMapEraseAbsent(t *testing.T) {
	t.Parallel()
	m := NewMap()
	erased, err := m.Erase(1)
	require.NoError(t, err)
	require.False(t, erased)
	require.Equal(t, 1, m.LastVersion(), "absent-key erase must not create a version")

	require.NoError(t, m.Insert(1, 1))
	erased, err = m.Erase(2)
	require.NoError(t, err)
	require.False(t, erased)
	require.Equal(t, 2, m.LastVersion())
}

func TestMapBranchTruncation(t *testing.T) {
	t.Parallel()
	m := NewMap()
	require.NoError(t, m.Insert(1, "a"))
	require.NoError(t, m.Insert(2, "b"))
	m.Undo(1, false)
	require.NoError(t, m.Insert(3, "c"))
	require.Equal(t, 3, m.LastVersion())
	m.Redo(5)
	found, err := m.Find(2, nil)
	require.NoError(t, err)
	require.False(t, found, "the undone branch must be unreachable")
	found, err = m.Find(3, nil)
	require.NoError(t, err)
	require.True(t, found)
}

func TestMapClearHistory(t *testing.T) {
	t.Parallel()
	m := NewMap()
	require.NoError(t, m.Insert(1, "a"))
	require.NoError(t, m.Insert(2, "b"))
	m.Undo(2, true)
	require.Equal(t, 1, m.LastVersion())
	require.Equal(t, 0, m.Len())
	m.Redo(2)
	found, err := m.Find(1, nil)
	require.NoError(t, err)
	require.False(t, found)
}

func TestMapIterOrder(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(3))
	m := NewMapWithSource(rnd)
	keys := rnd.Perm(100)
	for _, k := range keys {
		require.NoError(t, m.Insert(k, k*2))
	}
	require.Equal(t, 100, m.Len())
	var got []int
	err := m.Iter(func(key, value interface{}) error {
		require.Equal(t, key.(int)*2, value.(int))
		got = append(got, key.(int))
		return nil
	})
	require.NoError(t, err)
	require.True(t, sort.IntsAreSorted(got), "iteration must follow key order")
	require.Len(t, got, 100)
}

func TestMapIterStops(t *testing.T) {
	t.Parallel()
	m := NewMap()
	for i := 0; i < 10; i++ {
		require.NoError(t, m.Insert(i, i))
	}
	seen := 0
	err := m.Iter(func(key, value interface{}) error {
		seen++
		if key.(int) == 4 {
			return fmt.Errorf("stop at %v", key)
		}
		return nil
	})
	require.EqualError(t, err, "stop at 4")
	require.Equal(t, 5, seen)
}

func TestMapStringKeys(t *testing.T) {
	t.Parallel()
	m := NewMap()
	require.NoError(t, m.Insert("foo", 1))
	require.NoError(t, m.Insert("bar", 2))
	var v int
	found, err := m.Find("bar", &v)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 2, v)
}

type versionKey struct {
	epoch, serial int
}

func (k versionKey) Order(other Key) int {
	o := other.(versionKey)
	if k.epoch != o.epoch {
		if k.epoch < o.epoch {
			return -1
		}
		return 1
	}
	if k.serial < o.serial {
		return -1
	} else if k.serial > o.serial {
		return 1
	}
	return 0
}

func TestMapCustomKey(t *testing.T) {
	t.Parallel()
	m := NewMap()
	require.NoError(t, m.Insert(versionKey{1, 2}, "a"))
	require.NoError(t, m.Insert(versionKey{1, 1}, "b"))
	var v string
	found, err := m.Find(versionKey{1, 1}, &v)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "b", v)
}

func TestMapMixedKeyTypes(t *testing.T) {
	t.Parallel()
	m := NewMap()
	require.NoError(t, m.Insert(1, "a"))
	_, err := m.Find("one", nil)
	require.Error(t, err)
	require.Equal(t, 2, m.LastVersion())
}

func TestMapInsertEraseRoundTrip(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(11))
	m := NewMapWithSource(rnd)
	for i := 0; i < 20; i++ {
		require.NoError(t, m.Insert(i, i))
	}
	require.NoError(t, m.Insert(100, "transient"))
	erased, err := m.Erase(100)
	require.NoError(t, err)
	require.True(t, erased)
	require.Equal(t, 20, m.Len())
	for i := 0; i < 20; i++ {
		var v int
		found, err := m.Find(i, &v)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, i, v)
	}
	found, err := m.Find(100, nil)
	require.NoError(t, err)
	require.False(t, found)
}

// TestMapRecall drives random mutations, undos, and redos against a
// model of the whole version chain.
func TestMapRecall(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(23))
	m := NewMapWithSource(rnd)

	chain := []map[int]int{{}}
	cur := 0
	push := func(next map[int]int) {
		chain = append(chain[:cur+1], next)
		cur = len(chain) - 1
	}
	clone := func() map[int]int {
		next := make(map[int]int, len(chain[cur]))
		for k, v := range chain[cur] {
			next[k] = v
		}
		return next
	}
	for step := 0; step < 500; step++ {
		switch op := rnd.Intn(10); {
		case op < 5:
			k, v := rnd.Intn(30), rnd.Int()
			require.NoError(t, m.Insert(k, v))
			next := clone()
			next[k] = v
			push(next)
		case op < 7:
			k := rnd.Intn(30)
			_, present := chain[cur][k]
			erased, err := m.Erase(k)
			require.NoError(t, err)
			require.Equal(t, present, erased, "step %d", step)
			if present {
				next := clone()
				delete(next, k)
				push(next)
			}
		case op < 9:
			n := rnd.Intn(3)
			m.Undo(n, false)
			if cur -= n; cur < 0 {
				cur = 0
			}
		default:
			n := rnd.Intn(3)
			m.Redo(n)
			if cur += n; cur > len(chain)-1 {
				cur = len(chain) - 1
			}
		}
		require.Equal(t, len(chain), m.LastVersion(), "step %d", step)
		require.Equal(t, len(chain[cur]), m.Len(), "step %d", step)
		actual := map[int]int{}
		require.NoError(t, m.Iter(func(key, value interface{}) error {
			actual[key.(int)] = value.(int)
			return nil
		}))
		assert.Equal(t, chain[cur], actual, "step %d", step)
	}
}
