// Command smog generates matcher implementations for annotated contract
// interfaces.
//
//	smog generate ./...           # write autogen_smog.go next to every contract
//	smog generate --watch ./...   # regenerate when sources change
//	smog inspect --format yaml .  # print what would be generated
//	smog clean ./...              # remove generated files
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line args and returns the exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	root := a.rootCommand()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		a.reporter.ReportError(err)
		return 1
	}
	return 0
}
