// Package users provides a user-account and authentication backend: bcrypt
// credential hashing, signed access/refresh token pairs, an authorization
// gate for protected routes, and JSON controllers for registration, login,
// password change, and profile management.
//
// Tokens:
//   - TokenService issues stateless HS256 token pairs. Validity is
//     determined entirely by signature and expiry; there is no revocation
//     list, so a compromised token stays valid until it expires. This is an
//     accepted limitation of the stateless design.
//   - Access tokens gate requests; refresh tokens only mint new pairs.
//     Presenting one where the other is expected fails with
//     ErrTokenWrongType.
//
// Persistence:
//   - User and Profile are Bun models behind a RepositoryManager. Profiles
//     are one-to-one with users, cascade-deleted with them, and created
//     lazily with empty fields the first time they are read.
//   - Email uniqueness is enforced by the store's unique index, so
//     concurrent duplicate registrations resolve with exactly one winner.
//
// Notifications:
//   - Registration emits a welcome notification through a Notifier that
//     decouples delivery from the request path. Delivery is at-least-once
//     with backoff retries; failures are logged and never surfaced to the
//     registering request.
//
// Password hashing is CPU-bound and runs on the request goroutine; Go's
// scheduler keeps other requests serviced while bcrypt works.
package users
