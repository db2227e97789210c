// Command evmir-analyze decodes a hex-encoded EVM contract's runtime code,
// partitions it into basic blocks, runs the abstract-stack optimizer, and
// prints the resulting blocks with their instructions and stack_sets. The
// CodeMeta jumpdest bitmap and the instructions' operands are not printed.
//
// Usage:
//
//	evmir-analyze [flags] [hex]
//
// If hex is omitted, one line is read from stdin. A leading 0x is accepted
// and stripped.
//
// Flags:
//
//	--verbosity  Log level 0-5 (default: 3)
//	--version    Print version and exit
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/evmir/evmir/log"
	"github.com/evmir/evmir/vm"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		if code == 0 {
			fmt.Printf("evmir-analyze %s (commit %s)\n", version, commit)
		}
		return code
	}

	logger := log.New(verbosityToLevel(cfg.Verbosity)).Module("cli")
	log.SetDefault(logger)

	hexStr, err := resolveInput(cfg.Hex)
	if err != nil {
		logger.Error("failed to read input", "error", err)
		return 1
	}

	code2, err := decodeHex(hexStr)
	if err != nil {
		logger.Error("invalid hex input", "error", err)
		return 1
	}

	logger.Info("decoded bytecode", "bytes", len(code2))

	program := vm.NewProgram(code2)
	program.Optimize()

	dump(os.Stdout, program)
	return 0
}

func resolveInput(hex string) (string, error) {
	if hex != "" {
		return hex, nil
	}
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// decodeHex accepts a leading 0x (stripped if present) and requires both
// nibbles of every byte; the empty string decodes to an empty slice.
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0x" {
		return []byte{}, nil
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

func dump(w *os.File, p *vm.Program) {
	fmt.Fprintf(w, "program: %d bytes, %d basic blocks\n", len(p.Bytecode), len(p.BasicBlocks))
	for bi, b := range p.BasicBlocks {
		fmt.Fprintf(w, "block %d @ 0x%x (ends_on_invalid=%v, pops_at_end=%d, returns=%d)\n",
			bi, b.Address, b.EndsOnInvalid, b.PopsAtEnd, len(b.Returns))
		for _, ins := range b.Instructions {
			fmt.Fprintf(w, "  0x%04x [%d] %-12s ignoreable=%v constant=%v\n",
				ins.Address, ins.GlobalIdx, ins.OpcodeString(), ins.Ignoreable, ins.IsConstant)
		}
		for _, off := range b.SortedStackSetOffsets() {
			fmt.Fprintf(w, "  stack_sets[%d] = %s\n", off, b.StackSets[off].Kind)
		}
	}
}
