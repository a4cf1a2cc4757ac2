// Package cache stores derived artifacts of the barscene pipeline.
//
// Three kinds of values are cached, each under a key from a [Keyer]:
//
//   - datasets parsed from an import file ([Keyer.DatasetKey])
//   - frames synchronized from a scene document ([Keyer.FrameKey])
//   - rendered SVG, PNG or PDF output of a frame ([Keyer.ArtifactKey])
//
// # Backends
//
//   - [NullCache]: stores nothing
//   - [FileCache]: JSON files under a directory, used by the CLI
//   - [RedisCache]: a Redis server, used by the API server
//
// Remote backends retry transient failures with [Backoff]. Only errors
// wrapped with [Retryable] are retried.
package cache
