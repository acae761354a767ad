// Package jobs schedules the back office maintenance tasks.
package jobs

import (
    "context"
    "log"
    "time"

    "github.com/robfig/cron/v3"
)

// SessionPurger is satisfied by *repository.SessionRepo.
type SessionPurger interface {
    PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeSpec runs the session purge every night at 03:30.
const PurgeSpec = "30 3 * * *"

// purgeGrace keeps expired and revoked sessions for a day so the logs of
// the last requests can still be matched to a user.
const purgeGrace = 24 * time.Hour

// PurgeSessions deletes the sessions that expired or were revoked more
// than a day before now.
func PurgeSessions(ctx context.Context, sessions SessionPurger, now time.Time) (int64, error) {
    ctx, cancel := context.WithTimeout(ctx, time.Minute)
    defer cancel()
    return sessions.PurgeStale(ctx, now.Add(-purgeGrace))
}

// Register adds the maintenance jobs to c.  The caller starts and stops
// the scheduler.
func Register(c *cron.Cron, sessions SessionPurger) error {
    _, err := c.AddFunc(PurgeSpec, func() {
        n, err := PurgeSessions(context.Background(), sessions, time.Now().UTC())
        if err != nil {
            log.Printf("jobs: purge sessions: %v", err)
            return
        }
        log.Printf("jobs: purged %d stale sessions", n)
    })
    return err
}
