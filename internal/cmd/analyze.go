package cmd

import (
	"github.com/spf13/cobra"

	"builtwith/internal/pipeline"
)

var (
	analyzeJSON     string
	analyzeRepair   bool
	analyzeModel    string
	analyzeStream   bool
	analyzeShowJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [domain]",
	Short: "Summarize a domain's technology profile with Ollama",
	Long: `Fetches the BuiltWith profile of a domain, or loads a saved one with --json,
and asks a local Ollama model for insights about it.

Examples:
  builtwith analyze example.com
  builtwith analyze example.com --model tinyllama --stream
  builtwith analyze --json builtwith_response.json --show-json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeJSON, "json", "", "Analyze a saved BuiltWith response instead of querying the API")
	analyzeCmd.Flags().BoolVar(&analyzeRepair, "repair-json", false, "Repair malformed JSON in the --json file before parsing")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Ollama model to use (default from OLLAMA_MODEL, llama3)")
	analyzeCmd.Flags().BoolVar(&analyzeStream, "stream", false, "Stream the response as it is generated")
	analyzeCmd.Flags().BoolVar(&analyzeShowJSON, "show-json", false, "Print the BuiltWith JSON before the analysis")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	domain, err := profileSource(args, analyzeJSON)
	if err != nil {
		return err
	}
	svc, done, err := newService(analyzeJSON == "")
	if err != nil {
		return err
	}
	defer done()

	_, err = svc.Run(cmd.Context(), pipeline.Request{
		Command:    "analyze",
		Domain:     domain,
		JSONPath:   analyzeJSON,
		RepairJSON: analyzeRepair,
		Analyze:    true,
		Model:      analyzeModel,
		Stream:     analyzeStream,
		ShowJSON:   analyzeShowJSON,
	})
	if err != nil {
		ollamaTips(err, analyzeModel)
	}
	return err
}
