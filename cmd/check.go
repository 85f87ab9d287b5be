package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fora-lang/fora/fora"
	"github.com/fora-lang/fora/internal/log"
)

var CheckCmd = &cobra.Command{
	Use:          "check file.fora",
	Short:        "Type-check a fora file, reporting errors only",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var checkLogLevel *int

func init() {
	checkLogLevel = CheckCmd.Flags().IntP("log-level", "l", int(slog.LevelWarn), "log level")
}

func runCheck(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*checkLogLevel))

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
	return nil
}
