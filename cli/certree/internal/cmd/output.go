package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/klever-hub/kleverblockchain-certificates/record"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
)

// printVerdict writes a one-line verdict for a verification result.
func printVerdict(w io.Writer, name, value string, res record.Result) {
	switch res.Reason {
	case record.ReasonOK:
		okColor.Fprint(w, "VERIFIED")
	case record.ReasonMismatch:
		failColor.Fprint(w, "NOT VERIFIED")
	default:
		warnColor.Fprint(w, "INVALID")
	}
	fmt.Fprintf(w, " %s = %q (%s)\n", name, value, res.Reason)
	if res.Err != nil && res.Reason != record.ReasonMismatch {
		fmt.Fprintln(w, "  ", res.Err)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
