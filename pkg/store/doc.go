// Package store persists scene documents.
//
// A [Store] maps scene IDs (lowercase UUIDs, see [NewID]) to
// [scene.Document] values. Three backends are provided:
//
//   - [MemoryStore]: process memory, for tests and a standalone server
//   - [FileStore]: one JSON file per scene, for the CLI
//   - [MongoStore]: a MongoDB collection, for a shared server
//
// All backends validate documents on Put and report missing scenes with
// [errors.ErrCodeSceneNotFound].
//
// [errors.ErrCodeSceneNotFound]: github.com/matzehuels/barscene/pkg/errors
package store
