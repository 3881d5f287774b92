package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"coinquest/internal/auth/models"
	userStore "coinquest/internal/auth/store/user"
	"coinquest/internal/platform/config"
	"coinquest/internal/platform/postgres"
	id "coinquest/pkg/domain"
)

// accountStore is the slice of the user store this tool drives.
type accountStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	SetSuperuser(ctx context.Context, username string, superuser bool) error
	SetActive(ctx context.Context, userID id.UserID, active bool) error
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		fmt.Fprintln(os.Stderr, "Error: DATABASE_URL must be set")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := run(ctx, os.Args[1:], userStore.NewPostgres(db), os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, store accountStore, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username to modify")
	superuser := fs.String("superuser", "", "Grant (true) or revoke (false) superuser access")
	active := fs.String("active", "", "Activate (true) or deactivate (false) the account")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		fmt.Fprintln(stdout, "Usage: admin -user <username> [-superuser true|false] [-active true|false]")
		fs.PrintDefaults()
		return errors.New("missing required flag: user")
	}
	if *superuser == "" && *active == "" {
		return errors.New("nothing to do: set -superuser and/or -active")
	}

	user, err := store.FindByUsername(ctx, *username)
	if err != nil {
		return fmt.Errorf("find user %s: %w", *username, err)
	}

	if *superuser != "" {
		v, err := strconv.ParseBool(*superuser)
		if err != nil {
			return fmt.Errorf("invalid -superuser value %q", *superuser)
		}
		if err := store.SetSuperuser(ctx, user.Username, v); err != nil {
			return fmt.Errorf("set superuser: %w", err)
		}
		fmt.Fprintf(stdout, "User %s superuser=%t\n", user.Username, v)
	}
	if *active != "" {
		v, err := strconv.ParseBool(*active)
		if err != nil {
			return fmt.Errorf("invalid -active value %q", *active)
		}
		if err := store.SetActive(ctx, user.ID, v); err != nil {
			return fmt.Errorf("set active: %w", err)
		}
		fmt.Fprintf(stdout, "User %s active=%t\n", user.Username, v)
	}
	return nil
}
