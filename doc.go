// Package auth implements the identity core of the portal admin backend:
// credential verification, issuer-scoped JWT access tokens, and a rotating
// single-session refresh credential per user.
//
// Session flows:
//   - Auther orchestrates the three session transitions. Login verifies a
//     userid/password pair, signs an access token, and rotates the refresh
//     token. Refresh exchanges a live refresh token for a new pair,
//     invalidating the old one. Logout drops the caller's refresh token and
//     never fails from the client's perspective.
//   - Unknown userid, wrong password, and backend lookup failures are
//     indistinguishable to callers; everything collapses into
//     ErrInvalidCredentials at the service boundary.
//
// Request resolution:
//   - middleware/authware resolves every inbound request exactly once into
//     either an authenticated ResolvedIdentity or an anonymous request. The
//     resolver never rejects; route guards decide what anonymous access is
//     allowed. A DEV_AUTH bypass header is honored only in allow-listed
//     environments.
//
// Storage:
//   - Users and RefreshTokens are Bun repositories. Refresh rotation runs as
//     a single delete+insert transaction so at most one row exists per user,
//     even under concurrent refresh calls. TokenSweeper removes expired rows
//     out of band.
package auth
