/*
Package record implements the certificate record lifecycle.

A Record starts Unsealed: its fields, taken from a fixed Schema, may be
set and its salt regenerated. Sealing is one-way. It derives the leaf
digests, the Merkle root and one inclusion proof per field, and returns
an immutable Sealed value. Any later attempt to mutate the Record fails
with ErrSealed.

The package also exposes the verification query: given a trusted root,
a salt, a field name, a claimed value and a proof, VerifyField returns a
Result telling whether the claim holds and, if it does not, whether the
claim is false or the input is malformed.
*/
package record
