package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gangway-io/gangway"
	"github.com/gangway-io/gangway/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check all workflow definitions for consistency",
	Long: `Loads every workflow definition, resolves task inheritance, compiles the
transition graph and reports schema violations, missing fields, invalid
transition targets and unreachable steps.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("All workflows are valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	eng, err := gangway.New(projectDir(cmd, args))
	if err != nil {
		return fmt.Errorf("failed to init engine: %w", err)
	}

	ctx := cmd.Context()
	defs, err := eng.Workflows(ctx)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		return fmt.Errorf("no workflow definitions found")
	}

	for i := range defs {
		machine, err := eng.Compile(ctx, &defs[i])
		if err != nil {
			return err
		}
		if err := validator.ValidateReachability(machine); err != nil {
			return err
		}
		fmt.Printf("- %s (%d steps) ok\n", machine.WorkflowID, len(machine.Steps))
	}
	return nil
}
