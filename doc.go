// Package auth implements credential authentication and session issuance
// for the portal: password verification against the user store, short
// lived identity caching, signed session tokens, and the HTTP surfaces
// that consume them.
//
// Login flow:
//   - Auther orchestrates a login. It consults the identity cache first;
//     a hit skips verification entirely for the cache window. On a miss
//     the UserProvider fetches a projected record, applies the account
//     status policy, and compares the password under a bounded amount of
//     concurrent bcrypt work. Verified identities are cached and a signed
//     token is issued.
//   - Unknown identifiers and wrong passwords surface as the same error,
//     so responses never reveal whether an account exists.
//
// Sessions:
//   - TokenServiceImpl signs and validates HS256 tokens. Validation
//     distinguishes expired tokens from malformed ones so clients can
//     prompt a re-login instead of treating the session as tampered.
//   - RouteAuthenticator manages the session cookie, guards redirect
//     targets against open redirects, and reissues tokens for sessions
//     older than the configured update age.
package auth
