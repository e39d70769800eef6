/*
Package merkletree implements the binary Merkle tree that commits to the
fields of a certificate record, together with per-leaf inclusion proofs.

Tree construction

Leaves are the hashed canonical encodings of a record's fields, in field
order. Each level is built from the previous one by hashing adjacent
pairs left to right, left child first. When a level has an odd number of
nodes, the last node is promoted unchanged to the next level; it is
neither duplicated nor hashed with itself, so the tree always reflects
the true number of leaves. A single-leaf tree has the leaf as its root.

Proofs

A Proof carries the leaf index, the leaf count and the sibling path from
the leaf to the root. Each step names the sibling digest and on which
side of the running node it sits; a promotion is recorded as a no-op
step that carries the running digest up unchanged. Proofs never contain
the field value or the salt, which are supplied at verification time.

Verification

Verify replays a proof from a recomputed leaf and compares the result
with a trusted root. A mismatch is reported as ErrUnequalTreeHashes, while
structural defects in the proof are reported as a *MalformedProofError,
so callers can tell a false claim from a broken input.
*/
package merkletree
