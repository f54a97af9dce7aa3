package cmd

import (
	"github.com/spf13/cobra"

	"builtwith/internal/pipeline"
)

var (
	excelJSON   string
	excelRepair bool
	excelLLM    string
	excelOutput string
)

var excelCmd = &cobra.Command{
	Use:   "excel [domain]",
	Short: "Convert a BuiltWith profile and an optional analysis to Excel",
	Long: `Writes the technology stack of a domain to an Excel workbook. The profile
comes from the API or from a saved response (--json). An analysis passed with
--llm, either a file path or literal text, goes to its own sheet.

Examples:
  builtwith excel example.com
  builtwith excel example.com --output report.xlsx
  builtwith excel --json data.json --llm analysis.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExcel,
}

func init() {
	rootCmd.AddCommand(excelCmd)
	excelCmd.Flags().StringVar(&excelJSON, "json", "", "Path to a saved BuiltWith response (alternative to a domain)")
	excelCmd.Flags().BoolVar(&excelRepair, "repair-json", false, "Repair malformed JSON in the --json file before parsing")
	excelCmd.Flags().StringVar(&excelLLM, "llm", "", "LLM analysis as a text file path or as literal text")
	excelCmd.Flags().StringVarP(&excelOutput, "output", "o", pipeline.DefaultWorkbook, "Output Excel file path")
}

func runExcel(cmd *cobra.Command, args []string) error {
	domain, err := profileSource(args, excelJSON)
	if err != nil {
		return err
	}
	analysis, fromFile, err := pipeline.ResolveAnalysisText(excelLLM)
	if err != nil {
		return err
	}

	svc, done, err := newService(excelJSON == "")
	if err != nil {
		return err
	}
	defer done()

	if fromFile {
		printer.Printf("Loading LLM analysis from: %s\n", excelLLM)
	}
	_, err = svc.Run(cmd.Context(), pipeline.Request{
		Command:      "excel",
		Domain:       domain,
		JSONPath:     excelJSON,
		RepairJSON:   excelRepair,
		AnalysisText: analysis,
		Excel:        true,
		Output:       excelOutput,
	})
	return err
}
