package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gangway-io/gangway"
	"github.com/gangway-io/gangway/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export a workflow graph visualization",
	Long: `Compiles a workflow definition and outputs a Mermaid diagram (graph TD)
representing its transition logic. With --entity, the diagram highlights the
steps that entity has completed and the step it is currently on.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runGraph(cmd, args); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("workflow", "", "Workflow ID to render (defaults to the first definition)")
	graphCmd.Flags().String("entity", "", "Entity ID whose progress to overlay on the graph")
}

func runGraph(cmd *cobra.Command, args []string) error {
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

	workflowID, _ := cmd.Flags().GetString("workflow")
	def := &defs[0]
	if workflowID != "" {
		def = nil
		for i := range defs {
			if defs[i].ID == workflowID {
				def = &defs[i]
				break
			}
		}
		if def == nil {
			return fmt.Errorf("workflow %q not found", workflowID)
		}
	}

	machine, err := eng.Compile(ctx, def)
	if err != nil {
		return err
	}

	var overlay *graph.Overlay
	if entityID, _ := cmd.Flags().GetString("entity"); entityID != "" {
		state, err := eng.Sessions().Load(ctx, entityID)
		if err != nil {
			return fmt.Errorf("failed to load entity %q: %w", entityID, err)
		}
		overlay = &graph.Overlay{
			CompletedSteps: state.CompletedSteps,
			CurrentStepID:  state.CurrentStepID,
		}
	}

	fmt.Print(graph.GenerateMermaid(machine, overlay))
	return nil
}
