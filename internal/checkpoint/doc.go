// Package checkpoint persists per-contract resume points.
//
// The store owns a single YAML state file mapping contract ID to the byte
// offsets already consumed from that contract's data files. Every save
// rewrites the file through a temp-file-plus-rename so a crash mid-write can
// never leave a torn checkpoint on disk. This process is the only writer;
// auditing tools may read the file concurrently because updates are atomic
// replacements.
package checkpoint
