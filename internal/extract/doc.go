// Package extract drives incremental extraction of trade and depth events
// from the externally written data files into the sink.
//
// Each cycle runs per contract: locate the files, decode everything past the
// checkpoint, hand the batch to the sink, then commit the advanced
// checkpoint. The sink is handed each batch at-least-once: a failed commit
// means the next cycle re-decodes and re-delivers the same records, so sinks
// must be idempotent on replay. Checkpoints only advance after a successful
// sink write, and each stream commits independently of the other.
//
// Files are opened read-only with no locks; the external writer extends them
// between cycles and may leave a partial trailing record mid-flush, which is
// simply picked up next cycle.
package extract
