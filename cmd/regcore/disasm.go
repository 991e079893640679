package main

import (
	"fmt"
	"os"

	"github.com/deepnoodle-ai/regcore/dis"
	"github.com/deepnoodle-ai/regcore/ir"
	"github.com/deepnoodle-ai/regcore/passes"
	"github.com/deepnoodle-ai/regcore/registerize"
	"github.com/deepnoodle-ai/regcore/symstack"
	"github.com/spf13/cobra"
)

var disasmStage string
var disasmJSON bool

var disasmCmd = &cobra.Command{
	Use:   "disasm <file>",
	Short: "Disassemble a lowered buffer, or a source container mid-pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		switch disasmStage {
		case "lowered", "":
			if disasmJSON {
				return fmt.Errorf("regcore: --json requires --stage=ir")
			}
			return dis.PrintLowered(data, cmd.OutOrStdout())
		case "ir":
			src, err := decodeSourceContainer(args[0], data)
			if err != nil {
				return err
			}
			prog := ir.NewProgram(int(src.NumConsts()), int(src.NumLocals()))
			stack := symstack.New()
			if _, err := registerize.Registerize(prog, src, stack, 0); err != nil {
				return fmt.Errorf("regcore: registerizing %s: %w", args[0], err)
			}
			passes.Optimize(prog)
			if disasmJSON {
				return dis.PrintStatsJSON(prog, cmd.OutOrStdout())
			}
			dis.PrintIR(prog, cmd.OutOrStdout())
			return nil
		default:
			return fmt.Errorf("regcore: unknown --stage %q (expected ir or lowered)", disasmStage)
		}
	},
}

func init() {
	disasmCmd.Flags().StringVar(&disasmStage, "stage", "lowered", "pipeline stage to disassemble: ir or lowered")
	disasmCmd.Flags().BoolVar(&disasmJSON, "json", false, "print Program.Stats() as JSON instead of a disassembly")
}
