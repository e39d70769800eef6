// Package crypto contains the randomness routines used by certificate
// records, to:
// - generate a random slice of bytes from an explicit source (`MakeRand`)
// - generate, parse and display per-record salts (`Salt`).
//
// Hash functions live in the hasher subpackage and its registered
// implementations.
package crypto
