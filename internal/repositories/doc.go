// Package repositories implements playlist persistence for the console.
//
// Two backends satisfy [models.Store]:
//   - [DocumentStore] : a single YAML document, rewritten atomically on every save
//   - [PlaylistRepository] : SQLite tables, rewritten inside one transaction on every save
//
// Both have load-all/save-all semantics. There are no partial updates; the last full write wins.
// [Open] selects a backend from [shared.StorageConfig].
package repositories
