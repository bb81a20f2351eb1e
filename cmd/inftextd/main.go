// Command inftextd is a thin demo binary: it wires two session.Session
// instances to each other over an in-process loopback "transport" so a
// caller can watch the adOPTed transformation engine converge two users'
// concurrent edits without standing up any real network or UI. It is not
// a production daemon — see DESIGN.md for what's in and out of scope.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "inftextd",
		Short: "Loopback smoke test harness for the inftext collaborative text engine",
	}
	root.AddCommand(newDemoCmd())
	return root
}
