package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"adminpanel/models"
	"adminpanel/pkg/liveview"
	"adminpanel/pkg/records"

	"github.com/docopt/docopt-go"
	"golang.org/x/term"
)

const AdminCtlVersion = "0.1.0"

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
}

func main() {
	usage := `Admin panel control.

The token is read from --token, then $ADMINCTL_TOKEN, then the file written
by login (~/.adminctl_token).

Usage:
    adminctl login [--url=<url>] <username>
    adminctl list [--url=<url>] [--token=<token>]
    adminctl add [--url=<url>] [--token=<token>]
        --name=<name> --course=<course> --roll=<roll_no> --batch=<batch> --timing=<timing>
    adminctl edit [--url=<url>] [--token=<token>] <id>
        --name=<name> --course=<course> --roll=<roll_no> --batch=<batch> --timing=<timing>
    adminctl delete [--url=<url>] [--token=<token>] <id>
    adminctl watch [--url=<url>] [--token=<token>] [--reload=<interval>]

Options:
    -h --help              Show this screen.
    --version              Show version.
    --url=<url>            Server base url [default: http://localhost:8081].
    --token=<token>        Access token.
    --reload=<interval>    Also reload the full list on this interval, e.g. 30s.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], AdminCtlVersion)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if login_, _ := opts.Bool("login"); login_ {
		err = login(ctx, opts)
	} else if list_, _ := opts.Bool("list"); list_ {
		err = list(ctx, opts)
	} else if add_, _ := opts.Bool("add"); add_ {
		err = submit(ctx, opts, false)
	} else if edit_, _ := opts.Bool("edit"); edit_ {
		err = submit(ctx, opts, true)
	} else if delete_, _ := opts.Bool("delete"); delete_ {
		err = deleteRecord(ctx, opts)
	} else if watch_, _ := opts.Bool("watch"); watch_ {
		err = watch(ctx, opts)
	}
	if errors.Is(err, liveview.ErrUnauthenticated) {
		Err.Fatalf("not signed in; run `adminctl login <username>`")
	}
	if err != nil {
		Err.Fatalf("%v", err)
	}
}

func tokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".adminctl_token"
	}
	return filepath.Join(home, ".adminctl_token")
}

func client(opts docopt.Opts) *liveview.Client {
	url, _ := opts.String("--url")
	token, _ := opts.String("--token")
	if token == "" {
		token = os.Getenv("ADMINCTL_TOKEN")
	}
	if token == "" {
		if b, err := os.ReadFile(tokenPath()); err == nil {
			token = strings.TrimSpace(string(b))
		}
	}
	return liveview.NewClient(url, token)
}

func login(ctx context.Context, opts docopt.Opts) error {
	username, _ := opts.String("<username>")
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	c := client(opts)
	token, err := c.Login(ctx, username, string(pw))
	if err != nil {
		return err
	}
	if err := os.WriteFile(tokenPath(), []byte(token+"\n"), 0o600); err != nil {
		return err
	}
	Out.Printf("signed in as %s", username)
	return nil
}

func list(ctx context.Context, opts docopt.Opts) error {
	items, err := client(opts).List(ctx)
	if err != nil {
		return err
	}
	return liveview.Render(os.Stdout, items)
}

func fieldsFrom(opts docopt.Opts) records.Fields {
	var f records.Fields
	f.Name, _ = opts.String("--name")
	f.Course, _ = opts.String("--course")
	f.RollNo, _ = opts.String("--roll")
	f.Batch, _ = opts.String("--batch")
	f.Timing, _ = opts.String("--timing")
	return f
}

func submit(ctx context.Context, opts docopt.Opts, edit bool) error {
	form := liveview.NewForm(client(opts))
	if edit {
		id, _ := opts.String("<id>")
		form.Edit(models.Record{ID: id})
	}
	form.Fields = fieldsFrom(opts)
	rec, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	Out.Printf("%s %s", rec.ID, rec.Name)
	return nil
}

func deleteRecord(ctx context.Context, opts docopt.Opts) error {
	id, _ := opts.String("<id>")
	msg, err := client(opts).Delete(ctx, id)
	if err != nil {
		return err
	}
	Out.Printf("%s", msg)
	return nil
}

// watch keeps a live list on screen until interrupted.
func watch(ctx context.Context, opts docopt.Opts) error {
	var every time.Duration
	if s, _ := opts.String("--reload"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("--reload: %w", err)
		}
		every = d
	}

	v := liveview.NewView(client(opts), func(items []models.Record) {
		fmt.Print("\033[H\033[2J")
		_ = liveview.Render(os.Stdout, items)
	})
	if err := v.Start(ctx); err != nil {
		return err
	}
	defer v.Close()

	var tick <-chan time.Time
	if every > 0 {
		t := time.NewTicker(every)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-v.Done():
			return fmt.Errorf("live feed closed: %v", v.Err())
		case <-tick:
			if err := v.Reload(ctx); err != nil {
				Err.Printf("reload: %v", err)
			}
		}
	}
}
