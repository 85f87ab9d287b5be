package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fora-lang/fora/fora"
	"github.com/fora-lang/fora/internal/log"
)

var RunCmd = &cobra.Command{
	Use:          "run file.fora",
	Short:        "Process a fora file and print its command outputs",
	RunE:         runRun,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var runLogLevel *int

func init() {
	runLogLevel = RunCmd.Flags().IntP("log-level", "l", int(slog.LevelWarn), "log level")
}

func runRun(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*runLogLevel))

	program, err := fora.LoadFile(args[0])
	if err != nil {
		return err
	}
	if program.Errors().HasError() {
		for _, e := range program.Errors().Errors() {
			_, _ = fmt.Fprintln(os.Stderr, program.FormatError(e))
		}
		return fmt.Errorf("found %d errors in %s", len(program.Errors().Errors()), program.Name())
	}
	if out := program.Render(); out != "" {
		fmt.Println(out)
	}
	return nil
}
