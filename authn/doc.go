// Package authn holds the credential and token handling shared by the user
// and blog services.
//
// Passwords are stored as salted one-way hashes (argon2id by default, bcrypt
// hashes are still accepted on verification). Tokens are HS256 signed JWTs
// carrying the identity id and expire 24 hours after issuance. Both services
// must be configured with the same signing secret, the secret is read from an
// environment variable and removed from the process environment right after.
//
// Authorization is limited to ownership: a caller may change a resource only
// if its identity id equals the resource owner id.
package authn
