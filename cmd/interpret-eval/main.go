// interpret-eval is the main CLI: analyze system outputs, browse tasks
// and recorded runs, re-render reports, and serve the analysis tools
// over MCP.
//
// Usage:
//
//	interpret-eval analyze --task <task> --system-outputs <file>... [--custom-dataset-paths <file>]
//	interpret-eval tasks
//	interpret-eval report <report.json> [--format ascii|markdown]
//	interpret-eval runs [list|show <id>]
//	interpret-eval serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
