// Package models defines the Spotify Web API payloads decoded by the services.
//
// Every type carries `validate` tags checked after decoding, so a payload missing an identifying
// field is rejected instead of returned half-populated. Nullable API fields are pointers.
//
// Pagination comes in two shapes:
//   - [Page] : offset based, used by almost every list endpoint
//   - [CursorPage] : cursor based, used by followed artists and recently played tracks
//
// Playlist entries, the queue and playback state hold a [PlayableItem], which is either a track or
// a podcast episode.
package models
