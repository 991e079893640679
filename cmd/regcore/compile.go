package main

import (
	"fmt"
	"os"

	"github.com/deepnoodle-ai/regcore/recompile"
	"github.com/spf13/cobra"
)

var compileOutput string

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Recompile a source-bytecode container into register-machine bytecode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		src, err := decodeSourceContainer(args[0], data)
		if err != nil {
			return err
		}

		opts, err := driverOptions(ctx)
		if err != nil {
			return err
		}

		res, err := recompile.Compile(ctx, src, opts...)
		if err != nil {
			return fmt.Errorf("regcore: compiling %s: %w", args[0], err)
		}

		if compileOutput == "" || compileOutput == "-" {
			_, err = cmd.OutOrStdout().Write(res.Bytes)
			return err
		}
		return os.WriteFile(compileOutput, res.Bytes, 0o644)
	},
}

func init() {
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output file for the lowered buffer (default stdout)")
}
