// Package server provides HTTP routing, middleware, and the request handlers for the drive proxy.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers "METHOD /path" patterns on an [http.ServeMux],
// so method dispatch and path parameters come from the mux itself.
//
// # Handlers
//
// [AuthHandler] implements the OAuth2 authorization-code flow: it redirects
// the browser to the provider consent screen, validates the state parameter
// on callback (CSRF protection), exchanges the code for a grant, and writes
// the grant into the credential store. It also serves the explicit revoke
// endpoint.
//
// [FilesHandler] proxies upload, list, and download calls to the storage
// gateway, records completed transfers in the ledger, and serves health and
// history endpoints. Every gateway failure is mapped onto the HTTP surface:
// missing or expired grants become 401 so the front-end knows to restart the
// authorization flow rather than retry.
//
// # Streaming
//
// Downloads are piped from the remote response to the client without whole-file
// buffering. Error statuses are only possible before the first body byte is
// written; a mid-stream failure aborts the connection via http.ErrAbortHandler.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
