// Package poller is a client for the dashboard endpoint.  It keeps the last
// snapshot it saw and emits change events when counts go up, the way the
// admin home page refreshes itself.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultInterval is the time between two polls.
const DefaultInterval = 15 * time.Second

// DashboardPath is the endpoint polled, relative to the base URL.
const DashboardPath = "/api/dashboard-updates"

// Kind identifies a change event.
type Kind string

const (
	NewOrders    Kind = "new_orders"
	NewMessages  Kind = "new_messages"
	StatusCounts Kind = "status_counts"
)

// UrgentOrder mirrors one entry of urgentOrders.
type UrgentOrder struct {
	ID               uint64 `json:"id"`
	RoomNumber       string `json:"room_number"`
	DeliveryDatetime string `json:"delivery_datetime"`
	DeliveryRelative string `json:"delivery_relative"`
	DeliveryTime     string `json:"delivery_time"`
	Status           string `json:"status"`
	StatusLabel      string `json:"status_label"`
}

// RecentMessage mirrors one entry of recentMessages.
type RecentMessage struct {
	ID              uint64 `json:"id"`
	RoomNumber      string `json:"room_number"`
	Subject         string `json:"subject"`
	CreatedAt       string `json:"created_at"`
	CreatedRelative string `json:"created_relative"`
	IsNew           bool   `json:"is_new"`
}

// Snapshot is the data member of the endpoint's response.
type Snapshot struct {
	Enabled            bool            `json:"enabled"`
	MessagesEnabled    bool            `json:"messagesEnabled"`
	Degraded           bool            `json:"degraded"`
	OrdersToday        int             `json:"ordersToday"`
	UpcomingDeliveries int             `json:"upcomingDeliveries"`
	OrderStatusCounts  map[string]int  `json:"orderStatusCounts"`
	PendingOrders      int             `json:"pendingOrders"`
	UnreadMessages     int             `json:"unreadMessages"`
	MessagesToday      int             `json:"messagesToday"`
	MessagesTodayNew   int             `json:"messagesTodayNew"`
	UrgentOrders       []UrgentOrder   `json:"urgentOrders"`
	RecentMessages     []RecentMessage `json:"recentMessages"`
}

// Event reports a count that went up between two snapshots.
type Event struct {
	Kind     Kind
	Before   int
	After    int
	Snapshot Snapshot
}

func (e Event) String() string {
	return fmt.Sprintf("%s: %d -> %d", e.Kind, e.Before, e.After)
}

type envelope struct {
	Success bool     `json:"success"`
	Data    Snapshot `json:"data"`
	Error   string   `json:"error"`
}

// Option configures a Client.
type Option func(*Client)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option { return func(c *Client) { c.interval = d } }

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithCookie sends a cookie with every poll, typically the staff session.
func WithCookie(ck *http.Cookie) Option {
	return func(c *Client) { c.cookies = append(c.cookies, ck) }
}

// WithLogger replaces log.Printf for failed polls.
func WithLogger(logf func(string, ...any)) Option { return func(c *Client) { c.logf = logf } }

// Client polls the dashboard endpoint.
type Client struct {
	url      string
	http     *http.Client
	cookies  []*http.Cookie
	interval time.Duration
	logf     func(string, ...any)

	mu      sync.Mutex
	last    *Snapshot
	base    *Snapshot // last usable snapshot, the reference for Diff
	visible bool

	wake   chan struct{}
	events chan Event
}

// New returns a visible client for the back office at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		url:      strings.TrimRight(baseURL, "/") + DashboardPath,
		http:     http.DefaultClient,
		interval: DefaultInterval,
		logf:     log.Printf,
		visible:  true,
		wake:     make(chan struct{}, 1),
		events:   make(chan Event, 32),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Events delivers change events produced by Run.  Events that find the
// channel full are dropped.
func (c *Client) Events() <-chan Event { return c.events }

// Last returns the most recent snapshot, if any.
func (c *Client) Last() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Snapshot{}, false
	}
	return *c.last, true
}

// Visible reports whether polling is active.
func (c *Client) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// SetVisible suspends polling when v is false.  Going back to visible
// triggers an immediate refresh.
func (c *Client) SetVisible(v bool) {
	c.mu.Lock()
	was := c.visible
	c.visible = v
	c.mu.Unlock()
	if v && !was {
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
}

// Fetch performs one request and decodes the snapshot without touching
// the client state.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("dashboard: unexpected status %s", resp.Status)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Snapshot{}, fmt.Errorf("dashboard: decode: %w", err)
	}
	if !env.Success {
		if env.Error == "" {
			env.Error = "success=false"
		}
		return Snapshot{}, errors.New("dashboard: " + env.Error)
	}
	return env.Data, nil
}

// Poll fetches a snapshot, stores it and returns the changes relative to
// the last usable one.  The first usable snapshot only seeds the client.
// Degraded or disabled snapshots are kept for Last but never become the
// reference, so an outage does not replay counts as new on recovery.
func (c *Client) Poll(ctx context.Context) ([]Event, error) {
	snap, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = &snap
	if !usable(snap) {
		return nil, nil
	}
	prev := c.base
	c.base = &snap
	if prev == nil {
		return nil, nil
	}
	return Diff(*prev, snap), nil
}

func usable(s Snapshot) bool { return s.Enabled && !s.Degraded }

// Diff lists the counts that increased from prev to next.  Disabled or
// degraded snapshots on either side never produce events; their counts
// are zeroed placeholders.
func Diff(prev, next Snapshot) []Event {
	if !usable(prev) || !usable(next) {
		return nil
	}
	var out []Event
	if next.OrdersToday > prev.OrdersToday {
		out = append(out, Event{Kind: NewOrders, Before: prev.OrdersToday, After: next.OrdersToday, Snapshot: next})
	}
	if prev.MessagesEnabled && next.MessagesEnabled && next.UnreadMessages > prev.UnreadMessages {
		out = append(out, Event{Kind: NewMessages, Before: prev.UnreadMessages, After: next.UnreadMessages, Snapshot: next})
	}
	before, after := 0, 0
	changed := false
	for k, n := range next.OrderStatusCounts {
		before += prev.OrderStatusCounts[k]
		after += n
		if n > prev.OrderStatusCounts[k] {
			changed = true
		}
	}
	if changed {
		out = append(out, Event{Kind: StatusCounts, Before: before, After: after, Snapshot: next})
	}
	return out
}

// Run polls every interval while visible until ctx is done.  A poll starts
// right away.  Failed polls are logged and skipped; overlapping polls are
// not coalesced.
func (c *Client) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	poll := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			evs, err := c.Poll(ctx)
			if err != nil {
				if ctx.Err() == nil {
					c.logf("poller: %v", err)
				}
				return
			}
			for _, ev := range evs {
				select {
				case c.events <- ev:
				default:
					c.logf("poller: event dropped: %s", ev)
				}
			}
		}()
	}

	if c.Visible() {
		poll()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.wake:
			poll()
		case <-ticker.C:
			if c.Visible() {
				poll()
			}
		}
	}
}
