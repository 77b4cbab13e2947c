// Package model defines the decoded event types shared across the pipeline.
//
// Conventions:
//   - Timestamps: int64 microseconds since the Unix epoch
//   - Prices: float64, already scaled by the contract's price adjustment
//   - Quantities: unsigned counts exactly as read from the data files
package model
