// Package api implements the HTTP client for the MedTrack REST backend.
//
// All requests carry the session cookies (access_token, refresh_token)
// automatically through a cookie jar; the tokens themselves are opaque to
// the client and never parsed. A request that fails with 401 triggers
// exactly one silent session refresh followed by one replay of the
// original request. Concurrent 401s coalesce into a single in-flight
// refresh. When the refresh itself fails, the session-expired hook fires
// and the caller receives common.ErrSessionExpired.
package api
