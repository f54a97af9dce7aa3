package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"builtwith/internal/builtwith"
	"builtwith/internal/pipeline"
	"builtwith/internal/util"
)

var checkSave string

var checkCmd = &cobra.Command{
	Use:   "check [domain]",
	Short: "Verify the BuiltWith API key and save a sample response",
	Long: `Queries the API once (example.com unless a domain is given), reports the
top-level keys of the response and saves it for later use with --json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkSave, "save", "builtwith_response.json", "Where to save the response")
}

func runCheck(cmd *cobra.Command, args []string) error {
	domain := "example.com"
	if len(args) > 0 {
		domain = args[0]
	}

	svc, done, err := newService(true)
	if err != nil {
		return err
	}
	defer done()

	printer.Printf("Using API key: %s\n", util.MaskSecret(cfg.BuiltWithAPIKey, 10))
	res, err := svc.Run(cmd.Context(), pipeline.Request{Command: "check", Domain: domain, Quiet: true})
	if err != nil {
		return err
	}

	printer.Successf("BuiltWith API key is working!")
	printer.Printf("Domain scanned: %s\n", domain)
	printer.Printf("Top-level keys in response: %v\n", res.Profile.TopLevelKeys())
	if apiErrors := res.Profile.APIErrorsPretty(); apiErrors != "" {
		printer.Warnf("BuiltWith API returned errors:\n%s", apiErrors)
	}

	if err := builtwith.SaveFile(checkSave, res.Profile); err != nil {
		return err
	}
	saved, err := filepath.Abs(checkSave)
	if err != nil {
		saved = checkSave
	}
	printer.Printf("JSON response saved to: %s\n", saved)
	return nil
}
