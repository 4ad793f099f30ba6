package router

import (
	"net/url"

	"github.com/andrebq/blogbox/internal/cmdflags"
	"github.com/andrebq/blogbox/internal/gateway"
	"github.com/andrebq/blogbox/internal/httpserver"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:7007"
	usersEndpoint := "http://localhost:5000/"
	blogsEndpoint := "http://localhost:5001/"
	var staticDir string
	return &cli.Command{
		Name:  "router",
		Usage: "Start the router that exposes both services (and optionally the web client) on a single address",
		Flags: []cli.Flag{
			cmdflags.Bind(&bindAddr, "BLOGBOX_ROUTER_BIND"),
			&cli.StringFlag{
				Name:        "users-endpoint",
				Usage:       "Base endpoint of the user service",
				Destination: &usersEndpoint,
				Value:       usersEndpoint,
			},
			&cli.StringFlag{
				Name:        "blogs-endpoint",
				Usage:       "Base endpoint of the blog service",
				Destination: &blogsEndpoint,
				Value:       blogsEndpoint,
			},
			&cli.StringFlag{
				Name:        "static-dir",
				Usage:       "Directory with the built web client, empty disables it",
				Destination: &staticDir,
			},
		},
		Action: func(ctx *cli.Context) error {
			usersURL, err := url.Parse(usersEndpoint)
			if err != nil {
				return err
			}
			blogsURL, err := url.Parse(blogsEndpoint)
			if err != nil {
				return err
			}
			handler, err := gateway.AsHandler(ctx.Context, usersURL, blogsURL, staticDir)
			if err != nil {
				return err
			}
			return httpserver.Serve(ctx.Context, bindAddr, handler)
		},
	}
}
