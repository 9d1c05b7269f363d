// Package server provides the loopback HTTP infrastructure that receives OAuth callbacks.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Callback Handlers
//
// [CallbackHandler] serves backend-mediated flows: the provider redirects to the
// backend, which redirects to the loopback address with platform/success/username
// query parameters. The handler forwards them once through a channel and rejects
// replays, so a refresh of the authorization window cannot re-trigger a result.
//
// [ExchangeHandler] serves the generic provider's direct authorization code flow.
// It validates the state parameter (CSRF protection), exchanges the authorization
// code for tokens, and sends the result through a channel.
//
// # Usage
//
// A temporary HTTP server is started on the configured loopback address for the
// duration of one connection attempt and shut down as soon as the attempt
// resolves, whichever way it resolves.
package server
