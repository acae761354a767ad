package poller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	mu    sync.Mutex
	snap  Snapshot
	hits  atomic.Int32
	fail  bool
	seenC string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if ck, err := r.Cookie("backoffice_session"); err == nil {
		f.seenC = ck.Value
	}
	if f.fail {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": f.snap})
}

func (f *fakeServer) set(mut func(*Snapshot)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mut(&f.snap)
}

func baseSnapshot() Snapshot {
	return Snapshot{
		Enabled:           true,
		MessagesEnabled:   true,
		OrdersToday:       3,
		UnreadMessages:    1,
		OrderStatusCounts: map[string]int{"pending": 1, "confirmed": 0, "preparing": 1, "delivered": 1, "cancelled": 0},
	}
}

func TestPollFirstSnapshotOnlySeeds(t *testing.T) {
	fs := &fakeServer{snap: baseSnapshot()}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	c := New(srv.URL, WithCookie(&http.Cookie{Name: "backoffice_session", Value: "tok"}))
	evs, err := c.Poll(context.Background())
	require.NoError(t, err)
	require.Empty(t, evs)
	last, ok := c.Last()
	require.True(t, ok)
	require.Equal(t, 3, last.OrdersToday)
	require.Equal(t, "tok", fs.seenC)

	// Nothing changed.
	evs, err = c.Poll(context.Background())
	require.NoError(t, err)
	require.Empty(t, evs)

	fs.set(func(s *Snapshot) {
		s.OrdersToday = 5
		s.UnreadMessages = 2
		s.OrderStatusCounts = map[string]int{"pending": 3, "confirmed": 0, "preparing": 1, "delivered": 1, "cancelled": 0}
	})
	evs, err = c.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, evs, 3)
	require.Equal(t, Event{Kind: NewOrders, Before: 3, After: 5, Snapshot: evs[0].Snapshot}, evs[0])
	require.Equal(t, NewMessages, evs[1].Kind)
	require.Equal(t, StatusCounts, evs[2].Kind)
	require.Equal(t, 3, evs[2].Before)
	require.Equal(t, 5, evs[2].After)
}

func TestDiffIgnoresDecreasesAndDisabledSnapshots(t *testing.T) {
	prev := baseSnapshot()
	next := baseSnapshot()
	next.OrdersToday = 1
	next.UnreadMessages = 0
	require.Empty(t, Diff(prev, next))

	next = baseSnapshot()
	next.OrdersToday = 10
	next.Enabled = false
	require.Empty(t, Diff(prev, next))

	next = baseSnapshot()
	next.UnreadMessages = 4
	next.MessagesEnabled = false
	require.Empty(t, Diff(prev, next))

	// A degraded snapshot carries zeroed counts, not observed ones.
	degraded := Snapshot{Enabled: true, MessagesEnabled: true, Degraded: true, OrderStatusCounts: map[string]int{}}
	healthy := baseSnapshot()
	healthy.OrdersToday = 12
	healthy.UnreadMessages = 4
	require.Empty(t, Diff(degraded, healthy))
	require.Empty(t, Diff(Snapshot{}, healthy))

	noMessages := baseSnapshot()
	noMessages.MessagesEnabled = false
	noMessages.UnreadMessages = 0
	healthy = baseSnapshot()
	healthy.UnreadMessages = 4
	require.Empty(t, Diff(noMessages, healthy))
}

func TestPollKeepsHealthyBaselineAcrossOutage(t *testing.T) {
	fs := &fakeServer{snap: baseSnapshot()}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Poll(context.Background())
	require.NoError(t, err)

	fs.set(func(s *Snapshot) {
		*s = Snapshot{Enabled: true, MessagesEnabled: true, Degraded: true, OrderStatusCounts: map[string]int{}}
	})
	evs, err := c.Poll(context.Background())
	require.NoError(t, err)
	require.Empty(t, evs)
	last, ok := c.Last()
	require.True(t, ok)
	require.True(t, last.Degraded)

	// Recovery with unchanged counts is silent.
	fs.set(func(s *Snapshot) { *s = baseSnapshot() })
	evs, err = c.Poll(context.Background())
	require.NoError(t, err)
	require.Empty(t, evs)

	// An order that arrived during the outage is still reported once.
	fs.set(func(s *Snapshot) {
		*s = Snapshot{Enabled: true, MessagesEnabled: true, Degraded: true, OrderStatusCounts: map[string]int{}}
	})
	_, err = c.Poll(context.Background())
	require.NoError(t, err)
	fs.set(func(s *Snapshot) {
		*s = baseSnapshot()
		s.OrdersToday = 4
	})
	evs, err = c.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, NewOrders, evs[0].Kind)
	require.Equal(t, 3, evs[0].Before)
	require.Equal(t, 4, evs[0].After)
}

func TestPollErrors(t *testing.T) {
	fs := &fakeServer{fail: true}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	c := New(srv.URL + "/")
	_, err := c.Poll(context.Background())
	require.Error(t, err)
	_, ok := c.Last()
	require.False(t, ok)

	unsuccessful := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"unauthorized"}`))
	}))
	defer unsuccessful.Close()
	_, err = New(unsuccessful.URL).Poll(context.Background())
	require.EqualError(t, err, "dashboard: unauthorized")
}

func TestRunSuspendsWhileHidden(t *testing.T) {
	fs := &fakeServer{snap: baseSnapshot()}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	c := New(srv.URL, WithInterval(20*time.Millisecond), WithLogger(t.Logf))
	c.SetVisible(false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.Zero(t, fs.hits.Load())

	c.SetVisible(true)
	require.Eventually(t, func() bool { _, ok := c.Last(); return ok }, time.Second, 5*time.Millisecond)

	fs.set(func(s *Snapshot) { s.OrdersToday = 9 })
	select {
	case ev := <-c.Events():
		require.Equal(t, NewOrders, ev.Kind)
		require.Equal(t, 9, ev.After)
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
