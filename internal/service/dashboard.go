package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/hotel-backoffice/internal/model"
	"github.com/iliyamo/hotel-backoffice/internal/repository"
)

// OrderStats is satisfied by *repository.OrderRepo.
type OrderStats interface {
	CountCreatedToday(ctx context.Context) (int, error)
	StatusCountsToday(ctx context.Context) (map[string]int, error)
	CountUpcoming(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	Urgent(ctx context.Context, limit int) ([]model.Order, error)
}

// MessageStats is satisfied by *repository.MessageRepo.
type MessageStats interface {
	CountToday(ctx context.Context) (int, error)
	CountTodayNew(ctx context.Context) (int, error)
	CountUnread(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]model.GuestMessage, error)
}

// State tells how a snapshot was obtained.
type State string

const (
	// StateHealthy means every query succeeded.
	StateHealthy State = "healthy"
	// StateDisabled means room service is not provisioned: the orders
	// table does not exist.  This is a steady state, not a failure.
	StateDisabled State = "disabled"
	// StateDegraded means a query failed; the snapshot is zeroed.
	StateDegraded State = "degraded"
)

const dashboardListSize = 3

// UrgentOrder is an open order due soon.
type UrgentOrder struct {
	ID               uint64 `json:"id"`
	RoomNumber       string `json:"room_number"`
	DeliveryDatetime string `json:"delivery_datetime"`
	DeliveryRelative string `json:"delivery_relative"`
	DeliveryTime     string `json:"delivery_time"`
	Status           string `json:"status"`
	StatusLabel      string `json:"status_label"`
}

// RecentMessage is one of the latest guest messages.
type RecentMessage struct {
	ID              uint64 `json:"id"`
	RoomNumber      string `json:"room_number"`
	Subject         string `json:"subject"`
	CreatedAt       string `json:"created_at"`
	CreatedRelative string `json:"created_relative"`
	IsNew           bool   `json:"is_new"`
}

// Snapshot is the dashboard payload.
type Snapshot struct {
	State State `json:"-"`
	// Err is the failure behind a degraded snapshot.
	Err error `json:"-"`

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
	GeneratedAt        string          `json:"generatedAt"`
}

// Dashboard aggregates the figures shown on the admin home page.
type Dashboard struct {
	orders   OrderStats
	messages MessageStats
	loc      *time.Location
	now      func() time.Time
}

// NewDashboard builds the aggregator.  Times are displayed in loc.
func NewDashboard(orders OrderStats, messages MessageStats, loc *time.Location) *Dashboard {
	if loc == nil {
		loc = time.UTC
	}
	return &Dashboard{orders: orders, messages: messages, loc: loc, now: time.Now}
}

func (d *Dashboard) zero() Snapshot {
	counts := make(map[string]int, len(model.OrderStatuses))
	for _, s := range model.OrderStatuses {
		counts[s] = 0
	}
	return Snapshot{
		Enabled:           true,
		MessagesEnabled:   true,
		OrderStatusCounts: counts,
		UrgentOrders:      []UrgentOrder{},
		RecentMessages:    []RecentMessage{},
		GeneratedAt:       d.now().In(d.loc).Format(time.RFC3339),
	}
}

type orderFigures struct {
	today, upcoming, pending int
	counts                   map[string]int
	urgent                   []model.Order
}

type messageFigures struct {
	today, todayNew, unread int
	recent                  []model.GuestMessage
}

// Snapshot runs the order and message queries concurrently.  It never
// fails: a missing orders table yields a disabled snapshot, a missing
// messages table disables only the messages block, and any other error
// yields a zeroed degraded snapshot carrying the error.
func (d *Dashboard) Snapshot(ctx context.Context) Snapshot {
	var (
		of orderFigures
		mf messageFigures
	)

	og, octx := errgroup.WithContext(ctx)
	og.Go(func() (err error) { of.today, err = d.orders.CountCreatedToday(octx); return })
	og.Go(func() (err error) { of.counts, err = d.orders.StatusCountsToday(octx); return })
	og.Go(func() (err error) { of.upcoming, err = d.orders.CountUpcoming(octx); return })
	og.Go(func() (err error) { of.pending, err = d.orders.CountByStatus(octx, model.OrderPending); return })
	og.Go(func() (err error) { of.urgent, err = d.orders.Urgent(octx, dashboardListSize); return })

	mg, mctx := errgroup.WithContext(ctx)
	mg.Go(func() (err error) { mf.today, err = d.messages.CountToday(mctx); return })
	mg.Go(func() (err error) { mf.todayNew, err = d.messages.CountTodayNew(mctx); return })
	mg.Go(func() (err error) { mf.unread, err = d.messages.CountUnread(mctx); return })
	mg.Go(func() (err error) { mf.recent, err = d.messages.Recent(mctx, dashboardListSize); return })

	oerr, merr := og.Wait(), mg.Wait()

	snap := d.zero()
	switch {
	case repository.IsMissingTable(oerr):
		snap.State = StateDisabled
		snap.Enabled = false
		return snap
	case oerr != nil:
		return d.degraded(snap, oerr)
	case merr != nil && !repository.IsMissingTable(merr):
		return d.degraded(snap, merr)
	}

	snap.State = StateHealthy
	now := d.now()
	snap.OrdersToday = of.today
	snap.UpcomingDeliveries = of.upcoming
	snap.PendingOrders = of.pending
	for s, n := range of.counts {
		snap.OrderStatusCounts[s] = n
	}
	for _, o := range of.urgent {
		u := UrgentOrder{ID: o.ID, RoomNumber: o.RoomNumber, Status: o.Status, StatusLabel: model.OrderStatusLabel(o.Status)}
		if o.DeliveryAt != nil {
			t := o.DeliveryAt.In(d.loc)
			u.DeliveryDatetime = t.Format("2006-01-02 15:04:05")
			u.DeliveryTime = t.Format("15:04")
			u.DeliveryRelative = RelativeLabel(now, *o.DeliveryAt)
		}
		snap.UrgentOrders = append(snap.UrgentOrders, u)
	}

	if merr != nil {
		snap.MessagesEnabled = false
		return snap
	}
	snap.MessagesToday = mf.today
	snap.MessagesTodayNew = mf.todayNew
	snap.UnreadMessages = mf.unread
	for _, m := range mf.recent {
		snap.RecentMessages = append(snap.RecentMessages, RecentMessage{
			ID:              m.ID,
			RoomNumber:      m.RoomNumber,
			Subject:         m.Subject,
			CreatedAt:       m.CreatedAt.In(d.loc).Format("2006-01-02 15:04:05"),
			CreatedRelative: RelativeLabel(now, m.CreatedAt),
			IsNew:           m.Status == model.MessageNew,
		})
	}
	return snap
}

func (d *Dashboard) degraded(snap Snapshot, err error) Snapshot {
	snap.State = StateDegraded
	snap.Degraded = true
	snap.Err = err
	return snap
}

// RelativeLabel describes t relative to now in French: "à l'instant"
// under a minute, then minutes, hours and days, prefixed by "dans" for the
// future and "il y a" for the past.
func RelativeLabel(now, t time.Time) string {
	diff := t.Sub(now)
	prefix := "dans"
	if diff < 0 {
		diff = -diff
		prefix = "il y a"
	}
	switch {
	case diff < time.Minute:
		return "à l'instant"
	case diff < time.Hour:
		return fmt.Sprintf("%s %d min", prefix, int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%s %d h", prefix, int(diff/time.Hour))
	}
	return fmt.Sprintf("%s %d j", prefix, int(diff/(24*time.Hour)))
}
