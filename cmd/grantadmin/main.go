package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"server/internal/infra"
	"server/internal/sqlinline"
)

// grantadmin promotes an existing account to the admin role. Admin accounts
// are never created through the public API.
func main() {
	var emailFlag string
	flag.StringVar(&emailFlag, "email", "", "email of the user to promote")
	flag.Parse()

	email := strings.ToLower(strings.TrimSpace(emailFlag))
	if email == "" {
		exitWithError(errors.New("-email is required"))
	}

	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "grantadmin").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	updateCtx, cancelUpdate := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelUpdate()

	row := runner.QueryRow(updateCtx, sqlinline.QPromoteUserToAdmin, email)
	var id, fullName, updatedEmail, role string
	if err := row.Scan(&id, &fullName, &updatedEmail, &role); err != nil {
		exitWithError(fmt.Errorf("failed to promote user %q: %w", email, err))
	}

	fmt.Printf("promoted %s <%s> to %s (id=%s)\n", fullName, updatedEmail, role, id)
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "grantadmin: %v\n", err)
	os.Exit(1)
}
