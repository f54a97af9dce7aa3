package cmd

import (
	"github.com/spf13/cobra"

	"builtwith/internal/pipeline"
)

var (
	runJSON      string
	runRepair    bool
	runExcelFlag bool
	runModel     string
	runOutput    string
	runStream    bool
)

var runCmd = &cobra.Command{
	Use:   "run [domain]",
	Short: "Query BuiltWith, analyze with Ollama and optionally export to Excel",
	Long: `Runs the whole workflow for one domain. With --excel the workbook gets the
technology rows, the Ollama analysis appended below them, and the analysis on
its own sheet. If Ollama is unavailable the workbook is still written.

Examples:
  builtwith run example.com
  builtwith run example.com --excel
  builtwith run example.com --excel --model tinyllama
  builtwith run example.com --excel --output report.xlsx`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWorkflow,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runJSON, "json", "", "Use a saved BuiltWith response instead of querying the API")
	runCmd.Flags().BoolVar(&runRepair, "repair-json", false, "Repair malformed JSON in the --json file before parsing")
	runCmd.Flags().BoolVar(&runExcelFlag, "excel", false, "Export results to Excel with the Ollama analysis appended")
	runCmd.Flags().StringVar(&runModel, "model", "", "Ollama model to use (default from OLLAMA_MODEL, llama3)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Output Excel file path (default: {domain}_analysis.xlsx)")
	runCmd.Flags().BoolVar(&runStream, "stream", false, "Stream the Ollama response as it is generated")
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	domain, err := profileSource(args, runJSON)
	if err != nil {
		return err
	}
	svc, done, err := newService(runJSON == "")
	if err != nil {
		return err
	}
	defer done()

	_, err = svc.Run(cmd.Context(), pipeline.Request{
		Command:         "run",
		Domain:          domain,
		JSONPath:        runJSON,
		RepairJSON:      runRepair,
		Analyze:         true,
		Model:           runModel,
		Stream:          runStream,
		DegradeAnalysis: runExcelFlag,
		Excel:           runExcelFlag,
		InlineAnalysis:  true,
		Output:          runOutput,
	})
	if err != nil {
		ollamaTips(err, runModel)
	}
	return err
}
