// package models defines the data model for the photo-library mirror: media
// items, albums, face tags, sync state, and the query filter accepted by the
// cache store.
package models
