package cmdflags

import (
	"os"

	"github.com/andrebq/blogbox/authn"
	"github.com/andrebq/blogbox/internal/platform"
	"github.com/urfave/cli/v2"
)

type (
	// Platform groups the flags needed to open a platform.Platform.
	Platform struct {
		DBPath         string
		SecretEnvVar   string
		InsecureSecret bool
		PasswordScheme string
		CORSOrigins    cli.StringSlice
	}
)

func (p *Platform) Flags() []cli.Flag {
	return []cli.Flag{
		Database(&p.DBPath),
		SecretEnvVar(&p.SecretEnvVar),
		InsecureShortSecret(&p.InsecureSecret),
		PasswordScheme(&p.PasswordScheme),
		CORSOrigins(&p.CORSOrigins),
	}
}

// Open reads the signing secret from the environment and opens the platform.
func (p *Platform) Open(ctx *cli.Context) (*platform.Platform, error) {
	minLen := authn.MinSecretLength
	if p.InsecureSecret {
		minLen = 1
	}
	secret, err := authn.SecretFromEnv(p.SecretEnvVar, minLen, os.Getenv, os.Setenv)
	if err != nil {
		return nil, err
	}
	return platform.Open(ctx.Context, platform.Config{
		DBPath:         p.DBPath,
		Secret:         secret,
		PasswordScheme: authn.Scheme(p.PasswordScheme),
		CORSOrigins:    p.CORSOrigins.Value(),
	})
}
