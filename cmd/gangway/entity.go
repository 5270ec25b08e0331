package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gangway-io/gangway/pkg/adapters/file"
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Manage persisted entity states",
	Long:  `List, inspect, and remove entity state records stored under <dir>/state.`,
}

var entityLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all tracked entities",
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore(cmd)
		ids, err := store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing entities: %v\n", err)
			os.Exit(1)
		}

		if len(ids) == 0 {
			fmt.Println("No tracked entities found.")
			return
		}

		fmt.Println("Tracked Entities:")
		for _, id := range ids {
			fmt.Println("- " + id)
		}
	},
}

var entityInspectCmd = &cobra.Command{
	Use:   "inspect <entity-id>",
	Short: "Inspect the state of an entity",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		entityID := args[0]
		store := getStore(cmd)

		state, err := store.Load(cmd.Context(), entityID)
		if err != nil {
			fmt.Printf("Error loading entity '%s': %v\n", entityID, err)
			os.Exit(1)
		}

		// Pretty print JSON
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling state: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var entityRmCmd = &cobra.Command{
	Use:   "rm <entity-id>...",
	Short: "Remove one or more entity records",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore(cmd)
		hasError := false

		for _, entityID := range args {
			if err := store.Delete(cmd.Context(), entityID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", entityID, err)
				hasError = true
			} else {
				fmt.Printf("Removed entity '%s'\n", entityID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(entityCmd)
	entityCmd.AddCommand(entityLsCmd)
	entityCmd.AddCommand(entityInspectCmd)
	entityCmd.AddCommand(entityRmCmd)
}

func getStore(cmd *cobra.Command) *file.Store {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = "."
	}
	return file.New(filepath.Join(dir, "state"))
}
