package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestObserveReportsFirstSighting(t *testing.T) {
	s := New()
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.True(t, s.Observe("E2:00", -40, t0))
	require.False(t, s.Observe("E2:00", -35, t0.Add(time.Second)))
	require.False(t, s.Observe("", -1, t0))
	require.True(t, s.Has("E2:00"))
	require.False(t, s.Has(""))
	require.Equal(t, 1, s.Size())

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, Entry{EPC: "E2:00", Count: 2, RSSI: -35, FirstSeen: t0, LastSeen: t0.Add(time.Second)}, snap[0])
}

func TestSnapshotOrderAndReset(t *testing.T) {
	s := New()
	t0 := time.Now()
	s.Observe("B", 0, t0.Add(time.Second))
	s.Observe("C", 0, t0)
	s.Observe("A", 0, t0)

	var order []string
	for _, e := range s.Snapshot() {
		order = append(order, e.EPC)
	}
	require.Equal(t, []string{"A", "C", "B"}, order)

	s.Remove("A")
	require.False(t, s.Has("A"))
	s.Reset()
	require.Zero(t, s.Size())
	require.True(t, s.Observe("B", 0, t0))
}

func TestObserveConcurrent(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	firsts := make(chan bool, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			firsts <- s.Observe("E2", 0, time.Now())
		}()
	}
	wg.Wait()
	close(firsts)

	n := 0
	for first := range firsts {
		if first {
			n++
		}
	}
	require.Equal(t, 1, n)
	require.Equal(t, 64, s.Snapshot()[0].Count)
}
