// Package sink writes decoded event batches to the tick store database.
//
// The extraction engine delivers batches at-least-once: a cycle whose commit
// fails is re-decoded and re-delivered in full. Every insert therefore goes
// through ON CONFLICT DO NOTHING keyed by the record's position in its source
// file, which makes replays harmless. Inserts are append-only; rows are never
// updated.
package sink
