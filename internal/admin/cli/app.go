// Package cli implements authctl, the operator tool that shares the
// server's configuration and repositories. It runs one command per
// invocation: migrations, user provisioning and session inspection.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/sessions"
	"github.com/go-playground/validator/v10"
)

const usage = `Usage: authctl <command> [flags]

Commands:
  migrate                           apply pending database migrations
  create-user -email E [-name N]    create a verified user, password is prompted
  sessions -email E                 list the user's sessions
  revoke-sessions -email E          revoke every session of the user
`

var ErrUnknownCommand = errors.New("unknown command")

type App struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	sessions *sessions.Manager
	validate *validator.Validate
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time
}

func NewApp(db *sql.DB, rm repomanager.RepositoryManager, in io.Reader, out io.Writer) *App {
	return &App{
		db:       db,
		repos:    rm,
		sessions: sessions.NewManager(rm.Sessions(db)),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		reader:   bufio.NewReader(in),
		out:      out,
		now:      time.Now,
	}
}

// Usage writes the command summary to w.
func Usage(w io.Writer) {
	fmt.Fprint(w, usage)
}

// Run executes the command named by args[0] with the remaining arguments
// as its flags.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		Usage(a.out)
		return ErrUnknownCommand
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate":
		return a.Migrate(ctx)
	case "create-user":
		return a.CreateUser(ctx, rest)
	case "sessions":
		return a.ListSessions(ctx, rest)
	case "revoke-sessions":
		return a.RevokeSessions(ctx, rest)
	case "help", "-h", "--help":
		Usage(a.out)
		return nil
	default:
		Usage(a.out)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}
