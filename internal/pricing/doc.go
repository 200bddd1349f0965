// Package pricing computes cart and checkout prices: seller bulk discounts,
// per-line rounding, and distance-based delivery fees. Everything here is a
// pure function of its inputs.
package pricing
