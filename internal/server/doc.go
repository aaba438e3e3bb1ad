// Package server runs the short-lived HTTP server that receives the Spotify authorization redirect.
//
// # Router
//
// [BasicRouter] wraps [http.ServeMux] with method filtering and a [Middleware] stack.
// Middleware is applied in reverse order, so the first one added runs outermost.
// [Logging] writes one debug line per request.
//
// # OAuth Callback
//
// [OAuthHandler] checks the state parameter, hands the code to a [CodeExchanger] (normally [auth.PKCE])
// and sends one [OAuthResult]. Later callbacks are rejected.
//
// [WaitForCallback] listens on the configured host and port, returns the first result and shuts the server down.
// A context deadline bounds how long the CLI waits for the user.
package server
