// package cache implements the persistent mirror of the remote photo
// library: media items, albums, associations, face tags, thumbnail
// locations, the sync cursor, and a text search index kept transactionally
// consistent with the items it covers.
//
// All writes go through a single mutex so concurrent writers never
// interleave partial transactions; reads run directly against the database
// and only ever observe committed state.
package cache
