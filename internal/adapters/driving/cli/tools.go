package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var toolArgsJSON string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect and invoke retrieval tools",
	Long: `The retrieval tools are the capability surface exposed to AI
assistants. These commands list them and invoke them directly, which
is useful for debugging tool behaviour outside an assistant.`,
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available tools",
	RunE:  runToolsList,
}

var toolsCallCmd = &cobra.Command{
	Use:   "call [name]",
	Short: "Invoke a tool by name",
	Args:  cobra.ExactArgs(1),
	RunE:  runToolsCall,
}

func init() {
	toolsCallCmd.Flags().StringVarP(&toolArgsJSON, "args", "a", "{}", "tool arguments as a JSON object")
	toolsCmd.AddCommand(toolsListCmd)
	toolsCmd.AddCommand(toolsCallCmd)
	rootCmd.AddCommand(toolsCmd)
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	if toolRegistry == nil {
		return errors.New("tool registry not configured")
	}

	for _, descriptor := range toolRegistry.List() {
		cmd.Printf("%s - %s\n", descriptor.Name, descriptor.Description)
		for _, param := range descriptor.Params {
			required := ""
			if param.Required {
				required = " (required)"
			}
			cmd.Printf("    %s [%s]%s: %s\n", param.Name, param.Type, required, param.Description)
		}
	}
	return nil
}

func runToolsCall(cmd *cobra.Command, args []string) error {
	if toolRegistry == nil {
		return errors.New("tool registry not configured")
	}

	var toolArgs map[string]any
	if err := json.Unmarshal([]byte(toolArgsJSON), &toolArgs); err != nil {
		return fmt.Errorf("parsing --args: %w", err)
	}

	result := toolRegistry.Invoke(cmd.Context(), args[0], toolArgs)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	cmd.Println(string(data))

	if !result.OK() {
		return errors.New(result.ErrorString())
	}
	return nil
}
