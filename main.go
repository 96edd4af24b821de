// vm16 is the command-line interface to the virtual machine: it assembles
// and runs programs for a 16-bit bit-packed instruction set.
package main

import (
	"context"
	"os"

	"github.com/mna/vm16/internal/cli"
	"github.com/mna/vm16/internal/cli/cmd"
)

var commands = []cli.Command{
	cmd.Assembler(),
	cmd.Runner(),
}

// Entry point.
func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
