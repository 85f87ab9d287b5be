package cmd

import (
	"fmt"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/fora-lang/fora/fora"
	"github.com/fora-lang/fora/internal/log"
	"github.com/fora-lang/fora/parser"
)

const (
	historyFile = ".fora_history"
	promptMain  = "fora> "
	promptCont  = "  ... "
)

const replHelp = `REPL commands:
  :quit    Exit the REPL
  :help    Show this help
  :dump    Toggle dumping the parsed declarations of each input

Anything else is processed as fora declarations and commands, e.g.
  data Rot := r0 | r120 | r240
  #check r0
An unfinished declaration continues on the next line.`

var ReplCmd = &cobra.Command{
	Use:          "repl",
	Short:        "Start an interactive fora session",
	RunE:         runRepl,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
}

var replLogLevel *int

func init() {
	replLogLevel = ReplCmd.Flags().IntP("log-level", "l", int(slog.LevelWarn), "log level")
}

var replLogger = log.DefaultLogger.With("section", "repl")

func runRepl(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*replLogLevel))
	fmt.Println("fora REPL — Ctrl+C cancels input, Ctrl+D exits. Type :help for help.")

	ln := liner.NewLiner()
	defer func() { _ = ln.Close() }()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	session := fora.NewSession()
	dump := false

	for {
		input, ok := readInput(ln, session)
		if !ok {
			fmt.Println()
			return nil
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit":
				return nil
			case ":help":
				fmt.Println(replHelp)
			case ":dump":
				dump = !dump
				fmt.Printf("dump %v\n", dump)
			default:
				fmt.Println("unknown command; type :help for help")
			}
			continue
		}

		if dump {
			if file, errs := parser.ParseFile(token.NewFileSet(), "dump", input); !errs.HasError() {
				spew.Dump(file.Decls)
			}
		}

		outputs, errs := session.Eval(input)
		for _, out := range outputs {
			fmt.Println(out.Text)
		}
		if errs.HasError() {
			for _, e := range errs.Errors() {
				_, _ = fmt.Fprintln(os.Stderr, session.FormatError(e))
			}
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
	}
}

// readInput reads one logical input, prompting for continuation lines
// while a parse probe reports the text as incomplete. Returns false on
// end of input.
func readInput(ln *liner.State, session *fora.Session) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if err != nil {
			// liner returns ErrPromptAborted on Ctrl+C; treat
			// anything else like EOF and exit
			if err == liner.ErrPromptAborted {
				replLogger.Debug("input aborted")
				return "", true
			}
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" || strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, errs := parser.ParseFile(token.NewFileSet(), "probe", src); errs.IncompleteOnly() {
			continue
		}
		return src, true
	}
}
