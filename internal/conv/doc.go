// Package conv provides checked integer conversions for on-disk header fields.
//
// Use it where a value comes from untrusted data or an unbounded caller
// input. For conversions that are provably safe by domain constraints (e.g.
// loop indices), use direct type casts instead.
package conv
