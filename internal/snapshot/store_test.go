package snapshot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/rvsim/internal/riscv"
	"github.com/eigerco/rvsim/pkg/db"
	"github.com/eigerco/rvsim/pkg/db/pebble"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	kv, err := pebble.NewKVStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return NewStore(kv)
}

func snapAt(t *testing.T, pc uint64) *Snapshot {
	t.Helper()
	h := newHart(riscv.XLEN64, riscv.FloatABIDouble)
	h.SetPC(pc)
	s, err := Take(h)
	require.NoError(t, err)
	return s
}

func TestStore_SaveLoad(t *testing.T) {
	store := newStore(t)
	want := snapAt(t, 0x100)
	require.NoError(t, store.Save(2, 1000, want))

	got, err := store.Load(2, 1000)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = store.Load(2, 1001)
	assert.ErrorIs(t, err, pebble.ErrNotFound)
}

func TestStore_StepsAndLatest(t *testing.T) {
	store := newStore(t)
	for _, step := range []uint64{300, 5, 1 << 40, 20} {
		require.NoError(t, store.Save(1, step, snapAt(t, step)))
	}
	// neighbours must not leak into hart 1's range
	require.NoError(t, store.Save(0, 7, snapAt(t, 0)))
	require.NoError(t, store.Save(2, 0, snapAt(t, 0)))

	steps, err := store.Steps(1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{5, 20, 300, 1 << 40}, steps)

	step, s, err := store.Latest(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), step)
	assert.Equal(t, uint64(1<<40), s.PC)

	_, _, err = store.Latest(9)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestStore_LastHart(t *testing.T) {
	store := newStore(t)
	const hart = ^uint64(0)
	require.NoError(t, store.Save(hart, 3, snapAt(t, 3)))
	steps, err := store.Steps(hart)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, steps)
}

func TestStore_SaveAll(t *testing.T) {
	store := newStore(t)
	snaps := []*Snapshot{snapAt(t, 0x10), snapAt(t, 0x20), snapAt(t, 0x30)}
	require.NoError(t, store.SaveAll(50, snaps))

	for hart, want := range snaps {
		got, err := store.Load(uint64(hart), 50)
		require.NoError(t, err)
		assert.Equal(t, want.Digest(), got.Digest())
	}
}

func TestStore_Prune(t *testing.T) {
	store := newStore(t)
	for _, step := range []uint64{1, 2, 3, 4} {
		require.NoError(t, store.Save(0, step, snapAt(t, step)))
	}
	require.NoError(t, store.Prune(0, 3))
	steps, err := store.Steps(0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4}, steps)
}

type mockKV struct {
	mock.Mock
}

func (m *mockKV) Put(key, value []byte) error { return m.Called(key, value).Error(0) }
func (m *mockKV) Get(key []byte) ([]byte, error) {
	args := m.Called(key)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}
func (m *mockKV) Delete(key []byte) error { return m.Called(key).Error(0) }
func (m *mockKV) NewBatch() db.Batch      { return m.Called().Get(0).(db.Batch) }
func (m *mockKV) NewIterator(start, end []byte) (db.Iterator, error) {
	args := m.Called(start, end)
	it, _ := args.Get(0).(db.Iterator)
	return it, args.Error(1)
}
func (m *mockKV) Close() error { return m.Called().Error(0) }

type mockBatch struct {
	mock.Mock
}

func (m *mockBatch) Put(key, value []byte) error { return m.Called(key, value).Error(0) }
func (m *mockBatch) Delete(key []byte) error     { return m.Called(key).Error(0) }
func (m *mockBatch) Commit() error               { return m.Called().Error(0) }
func (m *mockBatch) Close() error                { return m.Called().Error(0) }

func TestStore_Keys(t *testing.T) {
	kv := new(mockKV)
	s := snapAt(t, 0)
	kv.On("Put", []byte{'s', 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 1, 0}, s.Encode()).Return(nil)

	require.NoError(t, NewStore(kv).Save(1, 256, s))
	kv.AssertExpectations(t)
}

func TestStore_Failures(t *testing.T) {
	diskFull := errors.New("disk full")

	kv := new(mockKV)
	kv.On("Put", mock.Anything, mock.Anything).Return(diskFull)
	kv.On("Get", mock.Anything).Return([]byte("garbage"), nil)
	store := NewStore(kv)

	err := store.Save(0, 1, snapAt(t, 0))
	assert.ErrorIs(t, err, diskFull)
	assert.Contains(t, err.Error(), "hart 0 at step 1")

	_, err = store.Load(0, 1)
	assert.ErrorIs(t, err, ErrBadMagic)

	batch := new(mockBatch)
	batch.On("Put", mock.Anything, mock.Anything).Return(nil)
	batch.On("Commit").Return(diskFull)
	batch.On("Close").Return(nil)
	kv.On("NewBatch").Return(batch)

	err = store.SaveAll(4, []*Snapshot{snapAt(t, 0), snapAt(t, 0)})
	assert.ErrorIs(t, err, diskFull)
	batch.AssertNumberOfCalls(t, "Put", 2)
	batch.AssertCalled(t, "Close")
}
