package users

import (
	"github.com/andrebq/blogbox/internal/cmdflags"
	"github.com/andrebq/blogbox/internal/httpserver"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:5000"
	var pf cmdflags.Platform
	return &cli.Command{
		Name:  "users",
		Usage: "Start the user service (register, login and profiles)",
		Flags: append([]cli.Flag{
			cmdflags.Bind(&bindAddr, "BLOGBOX_USERS_BIND"),
		}, pf.Flags()...),
		Action: func(ctx *cli.Context) error {
			p, err := pf.Open(ctx)
			if err != nil {
				return err
			}
			defer p.Close()
			return httpserver.Serve(ctx.Context, bindAddr, p.UsersHandler(ctx.Context))
		},
	}
}
