// Package merge interleaves a contract's trade and depth streams into one
// chronologically ordered event sequence.
//
// Both inputs are individually timestamp-nondecreasing; the iterator is a
// two-pointer merge over them. Ties are broken depth-before-trade so book
// reconstruction downstream sees the book mutation before the print it
// produced. Cursors only ever move forward: Seek discards, it never rewinds.
package merge
