package users

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andrebq/blogbox/internal/cmdflags"
	"github.com/andrebq/blogbox/internal/httpjson"
	"github.com/andrebq/blogbox/internal/platform"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	var p *platform.Platform
	var pf cmdflags.Platform
	return &cli.Command{
		Name:  "users",
		Usage: "Manage user accounts directly on the database",
		Flags: pf.Flags(),
		Before: func(ctx *cli.Context) error {
			var err error
			p, err = pf.Open(ctx)
			return err
		},
		After: func(ctx *cli.Context) error {
			if p == nil {
				return nil
			}
			return p.Close()
		},
		Subcommands: []*cli.Command{
			registerCmd(&p),
		},
	}
}

func registerCmd(p **platform.Platform) *cli.Command {
	var username string
	var email string
	return &cli.Command{
		Name:  "register",
		Usage: "Register a new user (password is read from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u", "user"},
				Usage:       "Name of the user to register",
				Destination: &username,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "Email used to login",
				Destination: &email,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			sc := bufio.NewScanner(os.Stdin)
			if !sc.Scan() {
				if sc.Err() != nil {
					return sc.Err()
				}
				return errors.New("missing password from stdin")
			}
			req := struct {
				Username string `json:"username" validate:"required,min=3,max=64"`
				Email    string `json:"email" validate:"required,email,max=254"`
				Password string `json:"password" validate:"required,min=6,max=128"`
			}{
				Username: strings.TrimSpace(username),
				Email:    strings.ToLower(strings.TrimSpace(email)),
				Password: strings.TrimSpace(sc.Text()),
			}
			if err := httpjson.Validate(&req); err != nil {
				return err
			}
			session, err := (*p).Identities.Register(ctx.Context, req.Username, req.Email, req.Password)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, session.Identity.ID)
			return nil
		},
	}
}
