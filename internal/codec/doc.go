// Package codec decodes the vendor's fixed-record binary data files.
//
// Both file kinds share the same shape: a fixed-size header carrying format
// metadata followed by a flat run of fixed-size little-endian records. The
// decoders are pure functions over byte buffers; they never consume a
// trailing partial record (the external writer may still be flushing it) and
// report how many bytes they consumed so callers can checkpoint the resume
// offset.
package codec
