// Package orchestrator turns planned chunks into one merged analysis.
//
// Each chunk is analyzed by a provider call whose result is cached under
// cache.ChunkKey; the ordered partials are then reduced by a merge call
// cached under cache.MergeKey. A cache hit skips the call entirely. A miss
// waits the mode's inter-call delay (never before the first chunk, and
// before the merge only when there was more than one chunk), then calls the
// provider through retry.Do, retrying rate limits, overloads, internal
// errors and timeouts with capped exponential backoff.
//
// Usage is estimated as it accrues: prompt runes / 4 for every computed call
// and payload runes / 4 for every result, replayed ones included.
package orchestrator
