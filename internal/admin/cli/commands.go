package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72

	timeLayout = "2006-01-02 15:04"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordLength   = fmt.Errorf("password must be %d to %d characters", minPasswordLen, maxPasswordLen)
)

func (a *App) Migrate(ctx context.Context) error {
	if err := a.repos.RunMigrations(ctx, a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintln(a.out, "Migrations applied")
	return nil
}

// CreateUser provisions a user whose email is already verified. The
// password is read twice from the terminal.
func (a *App) CreateUser(ctx context.Context, args []string) error {
	fs := a.newFlagSet("create-user")
	email := fs.String("email", "", "user email")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(ownArgs(args, "email", "name")); err != nil {
		return err
	}
	if err := a.checkEmail(*email); err != nil {
		return err
	}

	if *name == "" {
		n, err := GetSimpleText(a.reader, "Name", a.out)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		*name = n
	}

	pw, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		return ErrPasswordMismatch
	}
	if len(pw) < minPasswordLen || len(pw) > maxPasswordLen {
		return ErrPasswordLength
	}

	hash, err := cryptox.HashPassword(string(pw))
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u, err := a.repos.Users(a.db).Create(ctx, &models.User{
		Name:          *name,
		Email:         *email,
		Password:      hash,
		EmailVerified: true,
	})
	if err != nil {
		return fmt.Errorf("user %s: %w", *email, err)
	}

	fmt.Fprintf(a.out, "Created user %s (%s)\n", u.Email, u.PublicID)
	return nil
}

func (a *App) ListSessions(ctx context.Context, args []string) error {
	u, err := a.userFromArgs(ctx, "sessions", args)
	if err != nil {
		return err
	}

	list, err := a.sessions.ListSessions(ctx, u.ID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintf(a.out, "No sessions for %s\n", u.Email)
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDEVICE\tTYPE\tIP\tCREATED\tEXPIRES\tSTATUS")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.PublicID, s.DeviceName, s.DeviceType, s.IPAddress,
			s.CreatedAt.UTC().Format(timeLayout), s.ExpiresAt.UTC().Format(timeLayout),
			a.status(s))
	}
	return tw.Flush()
}

func (a *App) RevokeSessions(ctx context.Context, args []string) error {
	u, err := a.userFromArgs(ctx, "revoke-sessions", args)
	if err != nil {
		return err
	}

	n, err := a.sessions.RevokeAllUserSessions(ctx, u.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Revoked %d session(s) for %s\n", n, u.Email)
	return nil
}

func (a *App) userFromArgs(ctx context.Context, cmd string, args []string) (*models.User, error) {
	fs := a.newFlagSet(cmd)
	email := fs.String("email", "", "user email")
	if err := fs.Parse(ownArgs(args, "email")); err != nil {
		return nil, err
	}
	if err := a.checkEmail(*email); err != nil {
		return nil, err
	}

	u, err := a.repos.Users(a.db).GetByEmail(ctx, *email)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", *email, err)
	}
	return u, nil
}

func (a *App) status(s *models.Session) string {
	switch {
	case s.IsRevoked:
		return "revoked"
	case s.Expired(a.now()):
		return "expired"
	default:
		return "active"
	}
}

func (a *App) checkEmail(email string) error {
	if err := a.validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid -email %q", email)
	}
	return nil
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// ownArgs keeps only the command's flags; server configuration flags in the
// same argument list belong to config.LoadConfig.
func ownArgs(args []string, names ...string) []string {
	allowed := make([]string, 0, 2*len(names))
	for _, n := range names {
		allowed = append(allowed, "-"+n, "--"+n)
	}
	return flagx.FilterArgs(args, allowed)
}
