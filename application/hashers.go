package application

import (
	// register the tree hashers records can be sealed with
	_ "github.com/klever-hub/kleverblockchain-certificates/crypto/hasher/sha256d"
	_ "github.com/klever-hub/kleverblockchain-certificates/crypto/hasher/sha3"
)
