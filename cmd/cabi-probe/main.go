// Command cabi-probe loads a core module and checks its cabi_realloc export
// against the canonical ABI allocator policy.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wit-bindgen-go/host"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to core wasm module")
		align       = flag.Uint("align", 8, "Alignment of test allocations")
		size        = flag.Uint("size", 64, "Size of the first test allocation")
		verbose     = flag.Bool("v", false, "Debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: cabi-probe -wasm <file.wasm> [-align 8] [-size 64] [-v]")
		fmt.Fprintln(os.Stderr, "       cabi-probe -wasm <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	log := newLogger(*verbose)
	defer log.Sync()
	host.SetLogger(log)

	if *interactive {
		if err := runInteractive(*wasmFile, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, uint32(*align), uint32(*size), log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func run(wasmFile string, align, size uint32, log *zap.Logger) error {
	ctx := context.Background()

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	g, err := load(ctx, data, log)
	if err != nil {
		return err
	}
	defer g.Close(ctx)

	report, err := checkAllocator(ctx, g.mod, align, size)
	if err != nil {
		return err
	}

	fmt.Printf("Module: %s\n", wasmFile)
	report.Print(os.Stdout)
	if report.Failed() {
		return fmt.Errorf("cabi_realloc violates the allocator policy")
	}
	return nil
}
