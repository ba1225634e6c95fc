package slotgo

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/slotgo/testutil"
)

type entry struct {
	key   string
	value int
}

type counter struct {
	key uint64
	n   uint32
}

func byKey(k string) func(*entry) bool {
	return func(e *entry) bool { return e.key == k }
}

func compareKey(k string, e *entry) int {
	return strings.Compare(k, e.key)
}

func put(t *testing.T, st *SlotTable[entry], key string, value int) TableID {
	t.Helper()
	e, id, err := st.Add(HashString(key))
	require.NoError(t, err)
	require.NotNil(t, e)
	e.key = key
	e.value = value
	return id
}

func keysOf(st *SlotTable[entry]) []string {
	var keys []string
	for _, e := range st.All() {
		keys = append(keys, e.key)
	}
	return keys
}

func TestSlotTable_AddFindRemove(t *testing.T) {
	st := NewSlotTable[entry]()

	put(t, st, "a", 1)
	put(t, st, "b", 2)

	e, id := st.Find(HashString("a"), byKey("a"))
	require.NotNil(t, e)
	assert.Equal(t, 1, e.value)
	assert.Equal(t, TableID(0), id)

	removed, ok := st.Remove(HashString("a"), byKey("a"))
	require.True(t, ok)
	assert.Equal(t, "a", removed.key)

	e, id = st.Find(HashString("a"), byKey("a"))
	assert.Nil(t, e)
	assert.Equal(t, TableNone, id)

	e, _ = st.Find(HashString("b"), byKey("b"))
	require.NotNil(t, e)
	assert.Equal(t, 2, e.value)
	assert.Equal(t, 1, st.Count())
	assert.Equal(t, 2, st.Used())

	_, ok = st.Remove(HashString("a"), byKey("a"))
	assert.False(t, ok)
}

func TestSlotTable_Empty(t *testing.T) {
	var st SlotTable[entry]

	e, id := st.Find(HashString("a"), byKey("a"))
	assert.Nil(t, e)
	assert.True(t, id.IsNone())
	_, ok := st.Remove(HashString("a"), byKey("a"))
	assert.False(t, ok)
	assert.Nil(t, st.At(0))
	assert.True(t, st.Tombstones().IsEmpty())
	assert.Zero(t, st.Count())

	put(t, &st, "a", 1)
	assert.Equal(t, 8, st.Allocated())
}

func TestSlotTable_Collisions(t *testing.T) {
	st := NewSlotTable[entry]()
	const h = 42

	for _, k := range []string{"x", "y", "z"} {
		e, _, err := st.Add(h)
		require.NoError(t, err)
		e.key = k
	}
	// Same bucket (42 & 7 == 10 & 7), different hash.
	other, _, err := st.Add(10)
	require.NoError(t, err)
	other.key = "other"

	for _, k := range []string{"x", "y", "z"} {
		e, _ := st.Find(h, byKey(k))
		require.NotNil(t, e, k)
		assert.Equal(t, k, e.key)
	}

	matchAll := func(*entry) bool { return true }
	e, _ := st.Find(10, matchAll)
	require.NotNil(t, e)
	assert.Equal(t, "other", e.key)

	// Chain order is other -> z -> y -> x: unlink interior and tail links.
	for _, k := range []string{"y", "x", "z"} {
		_, ok := st.Remove(h, byKey(k))
		require.True(t, ok, k)
		e, _ := st.Find(h, byKey(k))
		assert.Nil(t, e, k)
	}
	e, _ = st.Find(10, matchAll)
	require.NotNil(t, e)
	assert.Equal(t, 1, st.Count())
}

func TestSlotTable_SentinelHash(t *testing.T) {
	assert.Equal(t, uint32(math.MaxUint32-1), fixHash(math.MaxUint32))
	assert.Equal(t, uint32(7), fixHash(7))

	st := NewSlotTable[entry]()
	e, id, err := st.Add(math.MaxUint32)
	require.NoError(t, err)
	e.key = "max"

	got, gotID := st.Find(math.MaxUint32, byKey("max"))
	require.NotNil(t, got)
	assert.Equal(t, id, gotID)
	assert.True(t, st.Tombstones().IsEmpty())
	assert.Same(t, got, st.At(id))

	_, ok := st.Remove(math.MaxUint32, byKey("max"))
	assert.True(t, ok)
	assert.Zero(t, st.Count())
}

func TestSlotTable_Growth(t *testing.T) {
	rng := testutil.NewRNG(1)
	keys := rng.Keys(1000, 8)
	st := NewSlotTable[entry]()

	var caps []int
	for i, k := range keys {
		put(t, st, k, i)
		if len(caps) == 0 || caps[len(caps)-1] != st.Allocated() {
			caps = append(caps, st.Allocated())
		}
	}
	assert.Equal(t, []int{8, 16, 32, 64, 128, 256, 512, 1024}, caps)
	assert.Equal(t, 1000, st.Count())

	for i, k := range keys {
		e, id := st.Find(HashString(k), byKey(k))
		require.NotNil(t, e, k)
		assert.Equal(t, i, e.value)
		assert.Same(t, e, st.At(id))
	}
}

func removeKeys(t *testing.T, st *SlotTable[entry], keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, ok := st.Remove(HashString(k), byKey(k))
		require.True(t, ok, k)
	}
}

func TestSlotTable_RehashCompacts(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	st := NewSlotTable[entry](WithMetricsCollector(metrics))
	for i := 0; i < 8; i++ {
		put(t, st, string(rune('a'+i)), i)
	}
	removeKeys(t, st, "b", "e", "g")
	assert.Equal(t, []uint32{1, 4, 6}, st.Tombstones().ToArray())
	assert.Equal(t, 8, st.Used())

	id := put(t, st, "i", 8)

	assert.Equal(t, 16, st.Allocated())
	assert.Equal(t, 6, st.Used())
	assert.Equal(t, TableID(5), id)
	assert.True(t, st.Tombstones().IsEmpty())
	assert.Equal(t, []string{"a", "c", "d", "f", "h", "i"}, keysOf(st))

	for _, k := range []string{"a", "c", "d", "f", "h", "i"} {
		e, _ := st.Find(HashString(k), byKey(k))
		assert.NotNil(t, e, k)
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.RehashCount)
	assert.Equal(t, int64(3), stats.RehashDropped)
}

func TestSlotTable_FixedID(t *testing.T) {
	st := NewSlotTable[entry](WithFlags(FixedID | Ordered))
	assert.Equal(t, FixedID|Ordered, st.Flags())

	ids := map[string]TableID{}
	for i := 0; i < 8; i++ {
		k := string(rune('a' + i))
		ids[k] = put(t, st, k, i)
	}
	removeKeys(t, st, "b", "e", "g")

	// Tombstones are not reused even with Ordered.
	ids["i"] = put(t, st, "i", 8)
	assert.Equal(t, TableID(8), ids["i"])

	assert.Equal(t, 16, st.Allocated())
	assert.Equal(t, 9, st.Used())
	assert.Equal(t, 6, st.Count())
	assert.Equal(t, []uint32{1, 4, 6}, st.Tombstones().ToArray())

	for _, k := range []string{"a", "c", "d", "f", "h", "i"} {
		e := st.At(ids[k])
		require.NotNil(t, e, k)
		assert.Equal(t, k, e.key)

		found, id := st.Find(HashString(k), byKey(k))
		assert.Same(t, e, found)
		assert.Equal(t, ids[k], id)
	}
	for _, k := range []string{"b", "e", "g"} {
		assert.Nil(t, st.At(ids[k]), k)
	}
}

func TestSlotTable_Ordered(t *testing.T) {
	t.Run("reuses the vacated tail", func(t *testing.T) {
		st := NewSlotTable[entry](WithFlags(Ordered))
		put(t, st, "a", 0)
		put(t, st, "b", 1)
		c := put(t, st, "c", 2)
		removeKeys(t, st, "c")

		d := put(t, st, "d", 3)
		assert.Equal(t, c, d)
		assert.Equal(t, []string{"a", "b", "d"}, keysOf(st))
		assert.Equal(t, 3, st.Used())
	})

	t.Run("reuses the most recent tombstone first", func(t *testing.T) {
		st := NewSlotTable[entry](WithFlags(Ordered))
		a := put(t, st, "a", 0)
		put(t, st, "b", 1)
		c := put(t, st, "c", 2)
		removeKeys(t, st, "a", "c")

		assert.Equal(t, c, put(t, st, "x", 3))
		assert.Equal(t, a, put(t, st, "y", 4))
		assert.Equal(t, TableID(3), put(t, st, "z", 5))
		assert.Equal(t, []string{"y", "b", "x", "z"}, keysOf(st))
		assert.True(t, st.Tombstones().IsEmpty())
	})

	t.Run("reused records start zeroed", func(t *testing.T) {
		st := NewSlotTable[entry](WithFlags(Ordered))
		put(t, st, "a", 41)
		removeKeys(t, st, "a")

		e, _, err := st.Add(HashString("b"))
		require.NoError(t, err)
		assert.Equal(t, entry{}, *e)
	})
}

func TestSlotTable_Unordered(t *testing.T) {
	st := NewSlotTable[entry]()
	put(t, st, "a", 0)
	put(t, st, "b", 1)
	put(t, st, "c", 2)
	removeKeys(t, st, "b")

	assert.Equal(t, TableID(3), put(t, st, "d", 3))
	assert.Equal(t, []string{"a", "c", "d"}, keysOf(st))
	assert.Equal(t, []uint32{1}, st.Tombstones().ToArray())
}

func TestSlotTable_At(t *testing.T) {
	st := NewSlotTable[entry]()
	id := put(t, st, "a", 1)

	assert.Equal(t, "a", st.At(id).key)
	assert.Nil(t, st.At(TableID(1)))
	assert.Nil(t, st.At(TableNone))

	removeKeys(t, st, "a")
	assert.Nil(t, st.At(id))
}

func TestSlotTable_KeyHelpers(t *testing.T) {
	st := NewSlotTable[entry]()
	put(t, st, "alpha", 1)
	put(t, st, "beta", 2)

	e, id := FindKey(st, HashString("beta"), "beta", compareKey)
	require.NotNil(t, e)
	assert.Equal(t, 2, e.value)
	assert.Equal(t, TableID(1), id)

	e, _ = FindKey(st, HashString("gamma"), "gamma", compareKey)
	assert.Nil(t, e)

	removed, ok := RemoveKey(st, HashString("alpha"), "alpha", compareKey)
	require.True(t, ok)
	assert.Equal(t, 1, removed.value)
	assert.Equal(t, 1, st.Count())
}

func TestSlotTable_MemUsage(t *testing.T) {
	st := NewSlotTable[entry]()
	put(t, st, "a", 1)

	// Header plus eight 4-byte buckets and eight 32-byte records.
	assert.Equal(t, 16+8*(4+32), st.MemUsage())

	ext := NewSlotTable[entry](WithReservedWords(3))
	require.Len(t, ext.Ext(), 3)
	put(t, ext, "a", 1)
	assert.Equal(t, 28+8*(4+32), ext.MemUsage())
}

func TestSlotTable_AllocationFailureKeepsState(t *testing.T) {
	// The first table block costs 304 bytes; the next one does not fit.
	alloc := NewLimitAllocator(LimitConfig{MemoryLimitBytes: 400})
	st := NewSlotTable[entry](WithAllocator(alloc))

	for i := 0; i < 8; i++ {
		put(t, st, string(rune('a'+i)), i)
	}
	assert.Equal(t, int64(304), alloc.MemoryUsage())

	e, id, err := st.Add(HashString("i"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocationFailed)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Nil(t, e)
	assert.Equal(t, TableNone, id)

	var ge *GrowError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, KindSlotTable, ge.Kind)
	assert.Equal(t, 16, ge.To)

	assert.Equal(t, 8, st.Count())
	assert.Equal(t, 8, st.Allocated())
	assert.Equal(t, int64(304), alloc.MemoryUsage())
	for i := 0; i < 8; i++ {
		k := string(rune('a' + i))
		e, _ := st.Find(HashString(k), byKey(k))
		require.NotNil(t, e, k)
		assert.Equal(t, i, e.value)
	}

	st.Release()
	assert.Zero(t, alloc.MemoryUsage())
	assert.Zero(t, st.Count())
	e, _ = st.Find(HashString("a"), byKey("a"))
	assert.Nil(t, e)
}

func TestSlotTable_OffHeap(t *testing.T) {
	st := NewSlotTable[counter](WithOffHeap())
	defer st.Release()

	hashKey := func(k uint64) uint32 {
		return HashBytes(binary.LittleEndian.AppendUint64(nil, k))
	}
	for k := uint64(1); k <= 200; k++ {
		c, _, err := st.Add(hashKey(k))
		require.NoError(t, err)
		c.key = k
		c.n = uint32(k * 2)
	}
	for k := uint64(1); k <= 200; k++ {
		c, _ := st.Find(hashKey(k), func(c *counter) bool { return c.key == k })
		require.NotNil(t, c)
		assert.Equal(t, uint32(k*2), c.n)
	}

	bad := NewSlotTable[entry](WithOffHeap())
	_, _, err := bad.Add(HashString("a"))
	assert.ErrorIs(t, err, ErrPointerElements)
	assert.Zero(t, bad.Allocated())
}

func TestSlotTable_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	st := NewSlotTable[entry](WithLogger(logger))

	for i := 0; i < 9; i++ {
		put(t, st, string(rune('a'+i)), i)
	}
	assert.Contains(t, buf.String(), "rehash completed")
	assert.Contains(t, buf.String(), "kind=slottable")
	assert.Contains(t, buf.String(), "from=8 to=16")
}

func TestSlotTable_MatchesModel(t *testing.T) {
	rng := testutil.NewRNG(2024)
	pool := rng.Keys(400, 6)

	for _, flags := range []Flags{0, Ordered, FixedID} {
		st := NewSlotTable[entry](WithFlags(flags))
		model := map[string]int{}

		for step, op := range rng.Ops(5000, 0.5) {
			k := pool[rng.Intn(len(pool))]
			_, present := model[k]

			switch op {
			case testutil.OpAdd:
				if present {
					continue
				}
				put(t, st, k, step)
				model[k] = step
			case testutil.OpRemove:
				got, ok := st.Remove(HashString(k), byKey(k))
				require.Equal(t, present, ok)
				if ok {
					require.Equal(t, model[k], got.value)
					delete(model, k)
				}
			case testutil.OpLookup:
				e, _ := st.Find(HashString(k), byKey(k))
				if !present {
					require.Nil(t, e)
					continue
				}
				require.NotNil(t, e)
				require.Equal(t, model[k], e.value)
			}
			require.Equal(t, len(model), st.Count())
		}

		n := 0
		for _, e := range st.All() {
			require.Equal(t, model[e.key], e.value)
			n++
		}
		assert.Equal(t, len(model), n, "flags %d", flags)
		assert.Equal(t, st.Used()-st.Count(), int(st.Tombstones().GetCardinality()))
	}
}
