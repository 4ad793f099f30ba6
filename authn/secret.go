package authn

import (
	"fmt"
	"os"
)

const (
	SecretEnvVar    = "JWT_SECRET"
	MinSecretLength = 16
)

// SecretFromEnv reads the signing secret from varname and clears the variable
// right after, the secret should never be passed as an argument.
func SecretFromEnv(varname string, minLen int, getfn func(string) string, setfn func(string, string) error) ([]byte, error) {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	setfn(varname, "")
	if len(val) == 0 {
		return nil, fmt.Errorf("authn: environment variable %v is empty, cause %w", varname, ErrEmptySecret)
	} else if len(val) < minLen {
		return nil, fmt.Errorf("authn: secret from %v too short got %v expecting at least %v bytes", varname, len(val), minLen)
	}
	return []byte(val), nil
}
