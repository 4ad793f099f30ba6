package cmdflags

import (
	"github.com/andrebq/blogbox/authn"
	"github.com/andrebq/blogbox/internal/platform"
	"github.com/urfave/cli/v2"
)

func Bind(out *string, envvar string) cli.Flag {
	return &cli.StringFlag{
		Name:        "bind",
		Usage:       "Address to bind for incoming requests",
		EnvVars:     []string{envvar},
		Value:       *out,
		Destination: out,
	}
}

func Database(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = platform.DefaultDBPath
	}
	return &cli.StringFlag{
		Name:        "db",
		Aliases:     []string{"d"},
		Usage:       "Path to the sqlite database shared by users and blogs",
		EnvVars:     []string{"BLOGBOX_DB"},
		Value:       *out,
		Destination: out,
	}
}

func SecretEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = authn.SecretEnvVar
	}
	return &cli.StringFlag{
		Name:        "secret-envvar-name",
		Usage:       "Name of the environment variable that holds the token signing secret. The secret itself should not be passed as an argument",
		Value:       *out,
		Destination: out,
	}
}

func InsecureShortSecret(out *bool) cli.Flag {
	return &cli.BoolFlag{
		Name:        "insecure-short-secret",
		Usage:       "Accept signing secrets shorter than the recommended length (development only)",
		Destination: out,
	}
}

func PasswordScheme(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = string(authn.SchemeArgon2id)
	}
	return &cli.StringFlag{
		Name:        "password-scheme",
		Usage:       "Hashing scheme for new passwords (argon2id or bcrypt), existing hashes of any scheme keep working",
		Value:       *out,
		Destination: out,
	}
}

func CORSOrigins(out *cli.StringSlice) cli.Flag {
	return &cli.StringSliceFlag{
		Name:        "cors-origin",
		Usage:       "Origin allowed to call the API, can be repeated",
		EnvVars:     []string{"BLOGBOX_CORS_ORIGINS"},
		Value:       cli.NewStringSlice("*"),
		Destination: out,
	}
}
