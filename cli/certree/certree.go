// Executable certree issues selectively disclosable certificates and
// verifies claims about them. See README for usage instructions.
package main

import (
	"github.com/klever-hub/kleverblockchain-certificates/cli"
	"github.com/klever-hub/kleverblockchain-certificates/cli/certree/internal/cmd"
)

func main() {
	cli.ExecuteRoot(cmd.RootCmd)
}
