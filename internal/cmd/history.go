package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"builtwith/internal"
	"builtwith/internal/storage"
	"builtwith/internal/util"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	setupFormatFlag(historyCmd, &historyFormat, "text", "text", "json", "yaml")
}

type historyOutput struct {
	Runs []internal.RunRecord `json:"runs" yaml:"runs"`
}

func (h historyOutput) ToJSON() any {
	return h
}

func (h historyOutput) ToText(w io.Writer) error {
	if len(h.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded yet.")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Started", "Command", "Domain", "Source", "Records", "Analysis", "Status", "Output"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, r := range h.Runs {
		status := string(r.Status)
		if r.Error != "" {
			status += ": " + util.Truncate(r.Error, 60)
		}
		table.Append([]string{
			r.StartedAt,
			r.Command,
			r.Domain,
			string(r.Source),
			strconv.Itoa(r.Records),
			yesNo(r.Analysis),
			status,
			r.Output,
		})
	}
	table.Render()
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	return output(printer.Out(), historyOutput{Runs: runs}, historyFormat)
}
