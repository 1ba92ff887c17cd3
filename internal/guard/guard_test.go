package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTaken = errors.New("taken")

type fakeStore struct {
	keys  map[string]bool
	calls []string
	err   error
}

func (f *fakeStore) exists(_ context.Context, key string) (bool, error) {
	f.calls = append(f.calls, key)
	if f.err != nil {
		return false, f.err
	}
	return f.keys[key], nil
}

func TestCheck(t *testing.T) {
	store := &fakeStore{keys: map[string]bool{"Red": true}}

	assert.ErrorIs(t, Check(context.Background(), "Red", store.exists, errTaken), errTaken)
	assert.NoError(t, Check(context.Background(), "Blue", store.exists, errTaken))
}

func TestCheckPropagatesLookupFailure(t *testing.T) {
	boom := errors.New("db down")
	store := &fakeStore{err: boom}

	err := Check(context.Background(), "Red", store.exists, errTaken)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, errTaken)
}

func TestCheckChangeSkipsUnchangedKey(t *testing.T) {
	store := &fakeStore{keys: map[string]bool{"Red": true}}

	require.NoError(t, CheckChange(context.Background(), "Red", "Red", store.exists, errTaken))
	assert.Empty(t, store.calls)

	assert.ErrorIs(t, CheckChange(context.Background(), "Blue", "Red", store.exists, errTaken), errTaken)
	assert.Equal(t, []string{"Red"}, store.calls)
}

func TestCheckBatch(t *testing.T) {
	cases := []struct {
		name    string
		stored  map[string]bool
		keys    []string
		wantErr bool
		calls   int
	}{
		{name: "all new", keys: []string{"S", "M", "L"}, calls: 3},
		{name: "collides with store", stored: map[string]bool{"M": true}, keys: []string{"S", "M", "L"}, wantErr: true, calls: 2},
		{name: "collides within batch", keys: []string{"S", "M", "S"}, wantErr: true, calls: 2},
		{name: "empty", keys: nil, calls: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{keys: tc.stored}
			err := CheckBatch(context.Background(), tc.keys, store.exists, errTaken)
			if tc.wantErr {
				assert.ErrorIs(t, err, errTaken)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, store.calls, tc.calls)
		})
	}
}

type triple struct{ p, c, s int64 }

func TestCheckBatchStructKeys(t *testing.T) {
	taken := triple{1, 2, 3}
	lookup := func(_ context.Context, k triple) (bool, error) { return k == taken, nil }

	assert.NoError(t, CheckBatch(context.Background(), []triple{{1, 2, 4}, {1, 3, 3}}, lookup, errTaken))
	assert.ErrorIs(t, CheckBatch(context.Background(), []triple{{1, 2, 4}, {1, 2, 3}}, lookup, errTaken), errTaken)
}
