// Package services exposes one service per Spotify Web API resource, grouped in [Client].
//
// Each method picks a route and a response type from [models], then hands the call to
// [api.Client], which owns authentication and error handling.
//
// # Input Checks
//
// Arguments are checked before any request is sent:
//   - [shared.ErrMissingArgument] : empty id, uri or query
//   - [shared.ErrInvalidArgument] : too many ids (20 for albums, 50 elsewhere, 100 playlist uris) or out of range values
//
// # Pagination
//
// List endpoints return a [models.Page] or [models.CursorPage] for a single page.
// [PlaylistService.AllItems] and [PlaylistService.AllCurrentUserPlaylists] walk every page.
package services
