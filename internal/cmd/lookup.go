package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"builtwith/internal/builtwith"
	"builtwith/internal/pipeline"
)

var (
	lookupFormat string
	lookupSave   string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <domain>",
	Short: "Print the raw BuiltWith profile of a domain",
	Long: `Fetches the technology profile of a domain and prints it unchanged.

Examples:
  builtwith lookup example.com
  builtwith lookup example.com --format yaml
  builtwith lookup example.com --format json --save example.json`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	setupFormatFlag(lookupCmd, &lookupFormat, "pretty", "pretty", "json", "yaml")
	lookupCmd.Flags().StringVar(&lookupSave, "save", "", "Also save the response, indented, to this file")
}

func runLookup(cmd *cobra.Command, args []string) error {
	svc, done, err := newService(true)
	if err != nil {
		return err
	}
	defer done()

	res, err := svc.Run(cmd.Context(), pipeline.Request{Command: "lookup", Domain: args[0], Quiet: true})
	if err != nil {
		return err
	}
	if apiErrors := res.Profile.APIErrorsPretty(); apiErrors != "" {
		printer.Warnf("BuiltWith API returned errors:\n%s", apiErrors)
	}

	var data []byte
	switch lookupFormat {
	case "json":
		data = append(res.Profile.Compact(), '\n')
	case "yaml":
		if data, err = res.Profile.YAML(); err != nil {
			return err
		}
	default:
		data = res.Profile.Pretty()
	}
	if _, err := printer.Out().Write(data); err != nil {
		return errors.Wrap(err, "write profile")
	}

	if lookupSave != "" {
		if err := builtwith.SaveFile(lookupSave, res.Profile); err != nil {
			return err
		}
		printer.Notef("Response saved to: %s", lookupSave)
	}
	return nil
}
