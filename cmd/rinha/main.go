// Command rinha runs serialized rinha programs.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/rinha-lang/rinha-go/pkg/ast"
	"github.com/rinha-lang/rinha-go/pkg/capabilities"
	"github.com/rinha-lang/rinha-go/pkg/diagnostics"
	"github.com/rinha-lang/rinha-go/pkg/evaluator"
	"github.com/rinha-lang/rinha-go/pkg/runtime"
)

const historyFile = ".rinha_history"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl())
	case "help", "--help", "-h":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: rinha <command> [options]")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  run <file.json> [--pretty] [--result]   run a serialized program")
	fmt.Fprintln(os.Stderr, "  repl                                    evaluate serialized terms interactively")
	fmt.Fprintln(os.Stderr, "  help                                    show this message")
}

func cmdRun(args []string) int {
	var file string
	pretty := false
	showResult := false

	for _, arg := range args {
		switch arg {
		case "--pretty":
			pretty = true
		case "--result":
			showResult = true
		default:
			if !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: rinha run <file.json> [--pretty] [--result]")
		return 1
	}

	data, err := readSource(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), err.Error(), nil)
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
		return 1
	}

	rt := runtime.New()
	result, runErr := rt.Run(data)
	if runErr != nil {
		if diagErr, ok := runErr.(*runtime.DiagnosticError); ok {
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, pretty))
			return 2
		}
		if rtErr, ok := runErr.(*evaluator.RuntimeError); ok {
			diag := diagnostics.MakeDiag(rtErr.Code, rtErr.Message, rtErr.FullText, &rtErr.Location)
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
			return 4
		}
		fmt.Fprintln(os.Stderr, runErr.Error())
		return 4
	}

	if showResult {
		fmt.Println(evaluator.Display(result.Value))
	}
	return 0
}

func readSource(file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

// cmdRepl evaluates one serialized term per entry against a persistent
// environment and cache, so Let bindings survive between entries.
func cmdRepl() int {
	fmt.Println("rinha REPL: one JSON term per entry. Ctrl+D or :quit exits.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	env := evaluator.NewEnv()
	cache := evaluator.NewCache()
	printer := capabilities.NewStream(os.Stdout)

	for {
		input, ok := readTerm(ln)
		if !ok {
			fmt.Println()
			return 0
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if strings.EqualFold(trimmed, ":quit") {
				return 0
			}
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}

		term, err := ast.DecodeTerm([]byte(trimmed))
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			continue
		}

		val, err := evaluator.Eval(term, env, cache, printer)
		if err != nil {
			if rtErr, ok := err.(*evaluator.RuntimeError); ok {
				diag := diagnostics.MakeDiag(rtErr.Code, rtErr.Message, rtErr.FullText, &rtErr.Location)
				fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostic(diag, true))
			} else {
				fmt.Fprintln(os.Stderr, err.Error())
			}
			continue
		}
		fmt.Printf("=> %s\n", evaluator.Display(val))
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
	}
}

// readTerm accumulates lines until the buffer is complete JSON, so a term
// can be pasted across several lines.
func readTerm(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := "==> "
		if b.Len() > 0 {
			prompt = "... "
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" {
			return src, true
		}
		if _, err := ast.DecodeTerm([]byte(strings.TrimSpace(src))); err != nil && isIncomplete(err) {
			continue
		}
		return src, true
	}
}

func isIncomplete(err error) bool {
	return strings.Contains(err.Error(), "unexpected end of JSON input")
}
