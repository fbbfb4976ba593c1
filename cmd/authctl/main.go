// authctl drives the session manager from a terminal against the configured
// session store, e.g. to log in once and let other processes read the token.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/gogotex/gogotex/backend/auth-widget/internal/config"
	autherrors "github.com/gogotex/gogotex/backend/auth-widget/internal/errors"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/events"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/identity"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/session"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/tokenstore"
	"github.com/gogotex/gogotex/backend/auth-widget/pkg/logger"
)

const usage = `usage: authctl <command> [flags]

commands:
  login     --email E [--password P]   log in and store the session
  register  --email E [--password P]   create an account
  refresh                              refresh the stored session now
  logout                               clear the stored session
  token                                print the current access token
  state                                print the session state
  watch                                keep the session fresh and print every new token

The password may also be given in AUTHCTL_PASSWORD.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("AUTHCTL_PASSWORD"), "account password")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := tokenstore.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open session store: %v", err)
	}
	defer closeStore()

	ctrl := session.New(
		identity.NewClient(cfg.Identity.BaseURL, &http.Client{Timeout: cfg.Identity.Timeout}),
		store,
		session.WithRefreshSkew(cfg.Session.RefreshSkew),
		session.WithNotifier(func(n session.Notice) {
			if n.IsError() {
				fmt.Fprintln(os.Stderr, n.Message)
			}
		}),
	)
	if err := ctrl.Restore(ctx); err != nil {
		logger.Warnf("could not restore session: %v", err)
	}

	if err := run(ctx, ctrl, cmd, *email, *password, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, autherrors.UserMessage(err))
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func run(ctx context.Context, ctrl *session.Controller, cmd, email, password string, out io.Writer) error {
	switch cmd {
	case "login":
		if email == "" || password == "" {
			return errUsage
		}
		if err := ctrl.Login(ctx, email, password); err != nil {
			return err
		}
		fmt.Fprintln(out, session.MsgLoginSuccess)
	case "register":
		if email == "" || password == "" {
			return errUsage
		}
		msg, err := ctrl.Register(ctx, email, password)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, msg)
	case "refresh":
		if err := ctrl.Refresh(ctx); err != nil {
			return err
		}
		printNext(ctrl, out)
	case "logout":
		ctrl.Logout(ctx)
		fmt.Fprintln(out, session.MsgLoggedOut)
	case "token":
		tok := ctrl.AccessToken(ctx)
		if tok == "" {
			return autherrors.ErrNotAuthenticated
		}
		fmt.Fprintln(out, tok)
	case "state":
		fmt.Fprintln(out, ctrl.State())
		printNext(ctrl, out)
	case "watch":
		return watch(ctx, ctrl, out)
	default:
		return errUsage
	}
	return nil
}

// watch refreshes on schedule until ctx is done or the session ends. Tokens
// living shorter than the refresh skew never arm the timer; those are
// refreshed here once they have expired.
func watch(ctx context.Context, ctrl *session.Controller, out io.Writer) error {
	if ctrl.State() == session.LoggedOut {
		return autherrors.ErrNotAuthenticated
	}
	l := events.Func(func(tok string) {
		fmt.Fprintf(out, "%s %s\n", time.Now().Format(time.RFC3339), tok)
	})
	ctrl.Subscribe(l)
	defer ctrl.Unsubscribe(l)
	printNext(ctrl, out)

	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		if ctrl.State() == session.LoggedOut {
			return autherrors.ErrSessionExpired
		}
		if ctrl.AccessToken(ctx) == "" {
			if err := ctrl.Refresh(ctx); err != nil {
				return err
			}
			printNext(ctrl, out)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
	}
}

func printNext(ctrl *session.Controller, out io.Writer) {
	if next, ok := ctrl.NextRefresh(); ok {
		fmt.Fprintf(out, "next refresh at %s\n", next.Format(time.RFC3339))
	}
}
