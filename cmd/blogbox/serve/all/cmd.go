package all

import (
	"fmt"
	"net"
	"net/url"

	"github.com/andrebq/blogbox/internal/cmdflags"
	"github.com/andrebq/blogbox/internal/gateway"
	"github.com/andrebq/blogbox/internal/httpserver"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	usersBind := "localhost:5000"
	blogsBind := "localhost:5001"
	routerBind := "localhost:7007"
	var staticDir string
	var pf cmdflags.Platform
	return &cli.Command{
		Name:  "all",
		Usage: "Start users, blogs and the router in a single process (development)",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "users-bind", Value: usersBind, Destination: &usersBind, Usage: "Address of the user service"},
			&cli.StringFlag{Name: "blogs-bind", Value: blogsBind, Destination: &blogsBind, Usage: "Address of the blog service"},
			&cli.StringFlag{Name: "router-bind", Value: routerBind, Destination: &routerBind, Usage: "Address of the router"},
			&cli.StringFlag{Name: "static-dir", Destination: &staticDir, Usage: "Directory with the built web client, empty disables it"},
		}, pf.Flags()...),
		Action: func(ctx *cli.Context) error {
			p, err := pf.Open(ctx)
			if err != nil {
				return err
			}
			defer p.Close()
			usersURL, err := endpoint(usersBind)
			if err != nil {
				return err
			}
			blogsURL, err := endpoint(blogsBind)
			if err != nil {
				return err
			}
			router, err := gateway.AsHandler(ctx.Context, usersURL, blogsURL, staticDir)
			if err != nil {
				return err
			}
			return httpserver.ServeAll(ctx.Context,
				httpserver.Server{Name: "users", Bind: usersBind, Handler: p.UsersHandler(ctx.Context)},
				httpserver.Server{Name: "blogs", Bind: blogsBind, Handler: p.BlogsHandler(ctx.Context)},
				httpserver.Server{Name: "router", Bind: routerBind, Handler: router},
			)
		},
	}
}

func endpoint(bind string) (*url.URL, error) {
	host, port, err := net.SplitHostPort(bind)
	if err != nil {
		return nil, fmt.Errorf("invalid bind address %v, cause %w", bind, err)
	}
	if len(host) == 0 || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return url.Parse(fmt.Sprintf("http://%v/", net.JoinHostPort(host, port)))
}
