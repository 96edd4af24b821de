package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mna/vm16/internal/asm"
	"github.com/mna/vm16/internal/cli"
	"github.com/mna/vm16/internal/encoding"
	"github.com/mna/vm16/internal/log"
)

// Assembler is the command that translates source into object code.
//
//	vm16 asm -o a.bin file.s
func Assembler() cli.Command {
	return &assembler{output: "a.bin"}
}

type assembler struct {
	debug  bool
	output string
}

func (assembler) Description() string {
	return "assemble source into a flat binary"
}

func (assembler) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `asm [-o out.bin] in.s [in.s...]

Assemble one or more source files into a single object.`)

	return err
}

func (a *assembler) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	fs.BoolVar(&a.debug, "debug", false, "enable debug logging")
	fs.StringVar(&a.output, "o", "a.bin", "output `filename`")

	return fs
}

// Run assembles args (source file paths) and writes the object to a.output.
func (a *assembler) Run(_ context.Context, args []string, _ io.Writer, logger *log.Logger) int {
	if a.debug {
		log.LogLevel.Set(log.Debug)
	}

	if len(args) == 0 {
		logger.Error("asm: no input files")
		return 1
	}

	parser := asm.NewParser(logger)

	for _, fn := range args {
		f, err := os.Open(fn)
		if err != nil {
			logger.Error("open failed", "file", fn, "err", err)
			return 1
		}

		parser.Parse(f)
	}

	if parser.Err() != nil {
		logger.Error("parse error", "err", parser.Err())
		return 1
	}

	gen := asm.NewGenerator(parser.Symbols(), parser.Lines())

	code, err := gen.Encode()
	if err != nil {
		logger.Error("encode error", "err", err)
		return 1
	}

	out, err := os.Create(a.output)
	if err != nil {
		logger.Error("create failed", "file", a.output, "err", err)
		return 1
	}

	defer out.Close()

	var n int64

	if strings.HasSuffix(a.output, ".S") {
		n, err = encoding.Dump(out, code)
	} else {
		n, err = asm.WriteTo(out, code)
	}

	if err != nil {
		logger.Error("write failed", "file", a.output, "err", err)
		return 1
	}

	logger.Debug("assembled",
		"out", a.output,
		"words", len(code.Words),
		"symbols", len(parser.Symbols()),
		"bytes", n,
	)

	return 0
}
