package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	redisadapter "github.com/target/navguard/internal/adapters/redis"
	"github.com/target/navguard/internal/bootstrap"
	domainauth "github.com/target/navguard/internal/domain/auth"
)

type sessionOptions struct {
	Timeout time.Duration
	Limit   int
	DryRun  bool
	Yes     bool
}

func parseSessionFlags(name string, args []string) (sessionOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := sessionOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", time.Minute, "Maximum duration to wait for Redis")
	if name == "list-sessions" {
		fs.IntVar(&opts.Limit, "limit", 100, "Maximum number of sessions to print (0 prints all)")
	} else {
		fs.BoolVar(&opts.DryRun, "dry-run", false, "Count sessions without deleting them")
		fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	}

	if err := fs.Parse(args); err != nil {
		return sessionOptions{}, err
	}
	if opts.Timeout <= 0 {
		return sessionOptions{}, errors.New("--timeout must be greater than zero")
	}
	if opts.Limit < 0 {
		return sessionOptions{}, errors.New("--limit must not be negative")
	}
	return opts, nil
}

func withSessionStore(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *redisadapter.SessionStore) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := bootstrap.ConnectRedis(ctx, bootstrap.DatabaseConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()

	return f(ctx, redisadapter.NewSessionStore(client, redisadapter.SessionStoreOptions{
		Prefix: cmdCtx.Config.Redis.KeyPrefix,
	}))
}

func runListSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionFlags("list-sessions", args)
	if err != nil {
		return err
	}

	return withSessionStore(cmdCtx, opts.Timeout, func(ctx context.Context, store *redisadapter.SessionStore) error {
		var (
			mu       sync.Mutex
			sessions []domainauth.Session
		)
		if err := store.Each(ctx, func(sess domainauth.Session) error {
			mu.Lock()
			sessions = append(sessions, sess)
			mu.Unlock()
			return nil
		}); err != nil {
			return fmt.Errorf("scan sessions: %w", err)
		}
		return printSessions(os.Stdout, sessions, opts.Limit, time.Now())
	})
}

func runClearSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionFlags("clear-sessions", args)
	if err != nil {
		return err
	}

	return withSessionStore(cmdCtx, opts.Timeout, func(ctx context.Context, store *redisadapter.SessionStore) error {
		if opts.DryRun {
			count := 0
			var mu sync.Mutex
			if err := store.Each(ctx, func(domainauth.Session) error {
				mu.Lock()
				count++
				mu.Unlock()
				return nil
			}); err != nil {
				return fmt.Errorf("scan sessions: %w", err)
			}
			return writef(os.Stdout, "Would delete %d sessions.\n", count)
		}

		if !opts.Yes {
			if err := writef(os.Stdout, "About to delete every session under %q.\n", cmdCtx.Config.Redis.KeyPrefix); err != nil {
				return err
			}
			if err := confirm(os.Stdin, "Continue?"); err != nil {
				return err
			}
		}

		removed, err := store.Purge(ctx)
		if err != nil {
			return fmt.Errorf("purge sessions: %w", err)
		}
		cmdCtx.Logger.InfoContext(ctx, "sessions cleared", "count", removed)
		return writef(os.Stdout, "Deleted %d sessions.\n", removed)
	})
}

// printSessions prints sessions soonest-expiring first.
func printSessions(w io.Writer, sessions []domainauth.Session, limit int, now time.Time) error {
	if len(sessions) == 0 {
		return writeln(w, "No sessions found.")
	}
	slices.SortFunc(sessions, func(a, b domainauth.Session) int {
		return cmp.Or(a.ExpiresAt.Compare(b.ExpiresAt), cmp.Compare(a.ID, b.ID))
	})

	shown := sessions
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "SESSION\tUSER\tEMAIL\tROLE\tEXPIRES IN\n"); err != nil {
		return err
	}
	for _, sess := range shown {
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n",
			sess.ID, dash(sess.UserID), dash(sess.Email), dash(string(sess.Role)),
			sess.ExpiresAt.Sub(now).Round(time.Second),
		); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(shown) < len(sessions) {
		return writef(w, "\n%d of %d sessions shown; raise --limit to see more.\n", len(shown), len(sessions))
	}
	return writef(w, "\n%d sessions.\n", len(sessions))
}
