// Command regcore is a batch/CLI front end over the recompile package:
// it does not interpret or execute anything, it just runs the
// registerizer/optimizer/lowerer pipeline against files on disk (or
// against an S3 cache and a Postgres ledger, when configured)
// and disassembles the result.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
