package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write every stored value as JSON (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := current.registry.Export(cmd.Context())
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')

		if len(args) == 0 || args[0] == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(args[0], data, 0644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d value(s) to %s\n", len(all), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all stored data with an export (\"-\" reads stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}

		var all map[string]json.RawMessage
		if err := json.Unmarshal(data, &all); err != nil {
			return fmt.Errorf("invalid export file: %w", err)
		}
		if args[0] != "-" && !confirm("Replace all collections with the contents of "+args[0]+"?") {
			return nil
		}
		if err := current.registry.Import(cmd.Context(), all); err != nil {
			return err
		}
		fmt.Printf("Imported %d value(s)\n", len(all))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
}
