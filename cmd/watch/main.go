// Command watch follows the back office dashboard from a terminal.  It
// prints a line whenever new orders or messages arrive.  Sending SIGUSR1
// pauses and resumes polling, like hiding and showing the browser tab.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/iliyamo/hotel-backoffice/internal/middleware"
	"github.com/iliyamo/hotel-backoffice/internal/poller"
)

func main() {
	app := &cli.App{
		Name:  "watch",
		Usage: "print dashboard changes of the hotel back office",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Usage:   "base URL of the back office",
				Value:   "http://localhost:8080",
				EnvVars: []string{"BACKOFFICE_URL"},
			},
			&cli.StringFlag{
				Name:     "cookie",
				Usage:    "value of the " + middleware.SessionCookie + " cookie of a signed-in session",
				EnvVars:  []string{"BACKOFFICE_SESSION"},
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "time between two polls",
				Value: poller.DefaultInterval,
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	if c.Duration("interval") < time.Second {
		return cli.Exit("interval must be at least 1s", 2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := poller.New(c.String("url"),
		poller.WithInterval(c.Duration("interval")),
		poller.WithCookie(&http.Cookie{Name: middleware.SessionCookie, Value: c.String("cookie")}),
		poller.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
	)

	toggle := make(chan os.Signal, 1)
	signal.Notify(toggle, syscall.SIGUSR1)
	defer signal.Stop(toggle)

	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	for {
		select {
		case ev := <-client.Events():
			fmt.Printf("%s %s\n", time.Now().Format("15:04:05"), describe(ev))
		case <-toggle:
			client.SetVisible(!client.Visible())
			if client.Visible() {
				log.Println("watch: resumed")
			} else {
				log.Println("watch: paused")
			}
		case err := <-done:
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func describe(ev poller.Event) string {
	switch ev.Kind {
	case poller.NewOrders:
		return fmt.Sprintf("%d nouvelle(s) commande(s), %d aujourd'hui", ev.After-ev.Before, ev.After)
	case poller.NewMessages:
		return fmt.Sprintf("%d nouveau(x) message(s), %d non lu(s)", ev.After-ev.Before, ev.After)
	}
	return ev.String()
}
