package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gangway-io/gangway"
)

var progressCmd = &cobra.Command{
	Use:   "progress <entity-id>",
	Short: "Show an entity's progress through its workflow",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runProgress(cmd, args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
}

func runProgress(cmd *cobra.Command, entityID string) error {
	eng, err := gangway.New(projectDir(cmd, nil))
	if err != nil {
		return fmt.Errorf("failed to init engine: %w", err)
	}

	overall, stages, err := eng.Progress(cmd.Context(), entityID)
	if err != nil {
		return err
	}

	fmt.Printf("Overall: %d%% (%d/%d steps)\n", overall.Percent, overall.Completed, overall.Total)
	for _, st := range stages {
		marker := " "
		if st.Total > 0 && st.Completed == st.Total {
			marker = "x"
		}
		name := st.Name
		if name == "" {
			name = st.StageID
		}
		fmt.Printf("  [%s] %s: %d%% (%d/%d)\n", marker, name, st.Percent, st.Completed, st.Total)
	}
	return nil
}
