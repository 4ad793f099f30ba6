package serve

import (
	"github.com/andrebq/blogbox/cmd/blogbox/serve/all"
	"github.com/andrebq/blogbox/cmd/blogbox/serve/blogs"
	"github.com/andrebq/blogbox/cmd/blogbox/serve/router"
	"github.com/andrebq/blogbox/cmd/blogbox/serve/users"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Root command to start the blogbox services",
		Subcommands: []*cli.Command{
			users.Cmd(),
			blogs.Cmd(),
			router.Cmd(),
			all.Cmd(),
		},
	}
}
