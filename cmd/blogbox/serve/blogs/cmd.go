package blogs

import (
	"github.com/andrebq/blogbox/internal/cmdflags"
	"github.com/andrebq/blogbox/internal/httpserver"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:5001"
	var pf cmdflags.Platform
	return &cli.Command{
		Name:  "blogs",
		Usage: "Start the blog service",
		Flags: append([]cli.Flag{
			cmdflags.Bind(&bindAddr, "BLOGBOX_BLOGS_BIND"),
		}, pf.Flags()...),
		Action: func(ctx *cli.Context) error {
			p, err := pf.Open(ctx)
			if err != nil {
				return err
			}
			defer p.Close()
			return httpserver.Serve(ctx.Context, bindAddr, p.BlogsHandler(ctx.Context))
		},
	}
}
