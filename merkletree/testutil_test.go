package merkletree

import (
	"fmt"
	"testing"

	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher"
	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher/sha256d"
)

var testHasher = sha256d.New()

func testLeaves(n int) [][]byte {
	leaves := make([][]byte, n)
	for i := range leaves {
		leaves[i] = testHasher.HashLeaf([]byte(fmt.Sprintf("leaf-%d", i)))
	}
	return leaves
}

func buildTestTree(t *testing.T, h hasher.TreeHasher, n int) *Tree {
	tree, err := Build(h, testLeaves(n))
	if err != nil {
		t.Fatal(err)
	}
	return tree
}
