// Command seedadmin creates an administrator account. It is meant to be run
// once against a fresh database, since self-registration only grants the
// student role.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/concernrise/concern-backend/internal/adapters/secondary/postgres"
	"github.com/concernrise/concern-backend/internal/config"
	"github.com/concernrise/concern-backend/internal/core/domain"
	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
)

func main() {
	var (
		fullName = flag.String("name", "Administrator", "full name of the admin account")
		email    = flag.String("email", "", "email address (required)")
		password = flag.String("password", "", "password (required)")
		campus   = flag.String("campus", string(domain.CampusOther), "campus")
		super    = flag.Bool("super", false, "grant the superadmin role instead of admin")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: seedadmin -email admin@example.com -password <password> [-name ...] [-campus ...] [-super]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	role := domain.RoleAdmin
	if *super {
		role = domain.RoleSuperAdmin
	}

	user, err := domain.NewUser(domain.UserRegistrationParams{
		FullName: *fullName,
		Email:    *email,
		Password: *password,
		Role:     role,
		Campus:   domain.Campus(*campus),
	})
	if err != nil {
		slog.Error("invalid admin parameters", "error", err)
		os.Exit(1)
	}

	created, err := postgres.NewUserRepository(pool).Create(ctx, user)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserExists) {
			slog.Error("an account with this email already exists", "email", *email)
		} else {
			slog.Error("failed to create admin account", "error", err)
		}
		os.Exit(1)
	}

	fmt.Printf("created %s account %s (%s)\n", created.Role, created.Email, created.ID)
}
