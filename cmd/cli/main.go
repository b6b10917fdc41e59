package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"wallet-lens/pkg/types"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var reported errReported
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wallet-lens",
		Short: "wallet-lens - heuristic key material locator",
		Long: `wallet-lens scans a binary wallet database for tagged key records and,
failing that, for the most random-looking byte window. It never decrypts
anything and cannot prove that a reported value is a real key.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExtractCmd())
	return root
}

// errReported marks a failure that has already been printed
type errReported struct{ code string }

func (e errReported) Error() string { return e.code }

func printError(stdout, stderr io.Writer, code, message string) error {
	type errorOutput struct {
		OK    bool             `json:"ok"`
		Error *types.ErrorInfo `json:"error"`
	}
	errOutput := errorOutput{
		OK: false,
		Error: &types.ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
	errJSON, _ := json.Marshal(errOutput)
	fmt.Fprintln(stdout, string(errJSON))
	fmt.Fprintf(stderr, "Error: %s\n", message)
	return errReported{code: code}
}
