package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tx8vm/vm"
)

func main() {
	var trace bool
	var inputPath string

	rootCmd := &cobra.Command{
		Use:   "tx8vm <rom-path>",
		Short: "Run a tx8 ROM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			romData, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading rom: %w", err)
			}

			opts := []vm.Option{}
			if inputPath != "" {
				input, err := os.ReadFile(inputPath)
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				opts = append(opts, vm.WithInput(input))
			} else {
				input, err := io.ReadAll(os.Stdin)
				if err == nil {
					opts = append(opts, vm.WithInput(input))
				}
			}

			machine, err := vm.NewVM(romData, opts...)
			if err != nil {
				return fmt.Errorf("loading rom: %w", err)
			}

			if trace {
				err = machine.RunTrace(os.Stderr)
			} else {
				err = machine.Run()
			}
			if err != nil {
				return err
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&trace, "trace", false, "print each instruction and the register file to stderr before executing it")
	rootCmd.Flags().StringVar(&inputPath, "input", "", "file to feed read_char from (defaults to stdin)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
