package chatstate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"glock/internal/domain"
)

func ids(items []domain.MessageSnapshot) []int64 {
	out := make([]int64, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}

func TestWindow_EvictsOldestFirst(t *testing.T) {
	w := NewWindow(7, &seqRand{vals: []int{0}})
	for id := int64(1); id <= 10; id++ {
		w.Push(domain.MessageSnapshot{ID: id})
		require.LessOrEqual(t, w.Len(), 7)
	}
	require.Equal(t, 7, w.Len())
	require.Equal(t, []int64{4, 5, 6, 7, 8, 9, 10}, ids(w.Items()))
}

func TestWindow_PartiallyFilled(t *testing.T) {
	w := NewWindow(12, &seqRand{vals: []int{0}})
	w.Push(domain.MessageSnapshot{ID: 1})
	w.Push(domain.MessageSnapshot{ID: 2})
	require.Equal(t, []int64{1, 2}, ids(w.Items()))
}

func TestWindow_SampleEmpty(t *testing.T) {
	w := NewWindow(3, &seqRand{vals: []int{0}})
	_, ok := w.Sample()
	require.False(t, ok)
}

func TestWindow_SampleUsesRandIndexFromOldest(t *testing.T) {
	w := NewWindow(3, &seqRand{vals: []int{0, 2, 1}})
	for id := int64(1); id <= 4; id++ {
		w.Push(domain.MessageSnapshot{ID: id})
	}

	got := make([]int64, 0, 3)
	for i := 0; i < 3; i++ {
		s, ok := w.Sample()
		require.True(t, ok)
		got = append(got, s.ID)
	}
	require.Equal(t, []int64{2, 4, 3}, got)
}

func TestWindow_ConcurrentPushAndSample(t *testing.T) {
	w := NewWindow(8, NewRand(1))
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(base int64) {
			defer wg.Done()
			for i := int64(0); i < 100; i++ {
				w.Push(domain.MessageSnapshot{ID: base*1000 + i})
				_, _ = w.Sample()
			}
		}(int64(g))
	}
	wg.Wait()
	require.Equal(t, 8, w.Len())
}

func TestNewRand_Range(t *testing.T) {
	r := NewRand(42)
	for i := 0; i < 1000; i++ {
		v := r.IntN(5)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 5)
	}
}

func TestNewSeed(t *testing.T) {
	_, err := NewSeed()
	require.NoError(t, err)
}
