package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskerid/internal/client/models"
)

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flagSet("register")
	fullName := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	userName := fs.String("username", "", "user name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := a.GetPassword()
	if err != nil {
		return err
	}

	token, err := a.client.RegisterMember(ctx, *fullName, *email, *userName, password)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, token)
	return nil
}

func (a *App) registerTasker(ctx context.Context, args []string) error {
	fs := a.flagSet("register-tasker")
	var r models.TaskerRegistration
	fs.StringVar(&r.FullName, "name", "", "full name")
	fs.StringVar(&r.Email, "email", "", "email address")
	fs.StringVar(&r.UserName, "username", "", "user name")
	skills := fs.String("skills", "", "comma-separated skills")
	fs.StringVar(&r.ExperienceLevel, "experience", "", "experience level")
	fs.Float64Var(&r.HourlyRate, "rate", 0, "hourly rate")
	fs.StringVar(&r.SelectedCategory, "category", "", "selected category")
	fs.Int64Var(&r.CategoryID, "category-id", 0, "category id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	r.Skills = splitList(*skills)

	password, err := a.GetPassword()
	if err != nil {
		return err
	}
	r.Password = password

	msg, err := a.client.RegisterTasker(ctx, r)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	identifier := fs.String("u", "", "user name or email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := a.GetPassword()
	if err != nil {
		return err
	}

	token, err := a.client.Login(ctx, *identifier, password)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, token)
	return nil
}

func (a *App) whoami(ctx context.Context, args []string) error {
	fs := a.flagSet("whoami")
	token := fs.String("token", a.config.Token, "access token (default $TASKERID_TOKEN)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token == "" {
		return fmt.Errorf("no token: pass -token or set TASKERID_TOKEN")
	}

	id, err := a.client.WhoAmI(ctx, *token)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "id:       %s\n", id.ID)
	fmt.Fprintf(a.out, "username: %s\n", id.UserName)
	fmt.Fprintf(a.out, "email:    %s\n", id.Email)
	fmt.Fprintf(a.out, "roles:    %s\n", strings.Join(id.Roles, ", "))
	fmt.Fprintf(a.out, "expires:  %s\n", id.ExpiresAt.UTC().Format(time.RFC3339))
	if p := id.Profile; p != nil {
		fmt.Fprintf(a.out, "skills:   %s\n", strings.Join(p.Skills, ", "))
		fmt.Fprintf(a.out, "level:    %s\n", p.ExperienceLevel)
		fmt.Fprintf(a.out, "rate:     %.2f\n", p.HourlyRate)
		fmt.Fprintf(a.out, "category: %s (%d)\n", p.SelectedCategory, p.CategoryID)
	}
	return nil
}
