// Package client contains the client-side backend collaborator for gophtasks.
//
// # Overview
//
// The package provides:
//  1. A gRPC implementation (see GRPCClient) of the backend capabilities the
//     application needs: password auth with refresh tokens, the task record
//     store, object-storage upload tickets and the per-user change feed.
//  2. An interceptor that injects the access token, transparently refreshes
//     an expired one and reports the new tokens through OnTokenRefresh.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// gRPC statuses are mapped onto sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrForbidden, ErrNotFound,
// ErrAlreadyExists, ErrInvalidArgument. The error text is the server's
// message unchanged, so it can be shown to the user as is.
//
// GRPCClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation.
package client
