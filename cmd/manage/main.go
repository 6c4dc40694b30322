// Command manage runs one-off administrative tasks against the store.
//
//	manage wait_for_db
//	manage createsuperuser -email admin@example.com -password secret
//	manage createuser -email cook@example.com -password secret -name Cook
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"recipe-api/internal/app"
	"recipe-api/internal/config"
	"recipe-api/internal/logging"
)

var errUsage = errors.New("usage: manage <wait_for_db|createsuperuser|createuser> [flags]")

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.Fatalf("setup logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], cfg, logger, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		logger.Fatal(err)
	}
}

func run(ctx context.Context, args []string, cfg config.Config, logger *logrus.Logger, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "wait_for_db":
		db, err := app.OpenStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		fmt.Fprintln(out, "Database available!")
		return nil

	case "createsuperuser", "createuser":
		fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
		fs.SetOutput(out)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		name := fs.String("name", "", "display name (createuser only)")
		if err := fs.Parse(args[1:]); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}

		db, err := app.OpenStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		a, err := app.New(ctx, db, cfg)
		if err != nil {
			return err
		}

		if args[0] == "createsuperuser" {
			user, err := a.Users.CreateSuperuser(ctx, *email, *password)
			if err != nil {
				return fmt.Errorf("create superuser: %w", err)
			}
			fmt.Fprintf(out, "Superuser %s created.\n", user.Email)
			return nil
		}

		user, err := a.Users.CreateUser(ctx, *email, *password, *name)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Fprintf(out, "User %s created.\n", user.Email)
		return nil

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}
