// repl.go — interactive session.
//
// Line editing and history via liner; an input that fails to parse only
// because it ran out of tokens (xpr.IsIncomplete) switches to a continuation
// prompt and keeps reading. The context persists across lines: assignments
// stick, and the last result is always rebound to #last.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/daios-ai/xpr"
)

var (
	styleResult = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleError  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleBanner = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

const replHelp = `
REPL commands:
  :help    Show this help
  :vars    List bound #variables
  :quit    Exit

#last holds the previous result. Assignments (#x = ..., name = ...) persist.
`

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive expression session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := FindAndLoad(cfgFile)
		if err != nil {
			return err
		}
		return runRepl(cfg)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cfg *Config) error {
	render := func(st lipgloss.Style, s string) string {
		if !cfg.REPL.Color {
			return s
		}
		return st.Render(s)
	}

	fmt.Println(render(styleBanner, fmt.Sprintf("xpr %s — Ctrl+C cancels input, Ctrl+D exits. Type :quit to exit.", xpr.Version)))

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, cfg.REPL.HistoryFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ctx := xpr.NewContext()
	for k, v := range cfg.Vars {
		ctx.SetVariable(k, normalize(v))
	}

	for {
		src, ok := readByParseProbe(ln, cfg.REPL.Prompt, cfg.REPL.Cont)
		if !ok {
			fmt.Println()
			return nil
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return nil
			case ":help":
				fmt.Print(replHelp)
			case ":vars":
				printVars(ctx)
			default:
				fmt.Println("unknown command. Type :help.")
			}
			continue
		}

		expr, err := xpr.Parse(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, render(styleError, xpr.WrapErrorWithSource(err, src).Error()))
			continue
		}
		v, err := expr.Eval(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, render(styleError, xpr.WrapErrorWithSource(err, src).Error()))
			continue
		}
		ctx.SetVariable("last", v)
		fmt.Println(render(styleResult, formatResult(v)))
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}
}

// readByParseProbe reads a line and keeps appending continuation lines while
// the accumulated text parses as incomplete. Returns false on EOF/abort.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if err != nil {
			if err == liner.ErrPromptAborted && b.Len() > 0 {
				return "", true // cancel the pending multiline input
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
		if _, err := xpr.Parse(src); xpr.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}

func printVars(ctx *xpr.Context) {
	names := ctx.VariableNames()
	if len(names) == 0 {
		fmt.Println("(no variables bound)")
		return
	}
	for _, name := range names {
		v, _ := ctx.Variable(name)
		fmt.Printf("  #%s = %s\n", name, formatResult(v))
	}
}
