package cmd

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"builtwith/internal/util"
)

// Outputter is implemented by command results that support --format.
type Outputter interface {
	// ToJSON returns the data structure for JSON/YAML marshaling
	ToJSON() any
	// ToText writes human-readable text format
	ToText(w io.Writer) error
}

func output(w io.Writer, o Outputter, format string) error {
	switch util.NormalizeFormat(format) {
	case "json":
		data, err := json.MarshalIndent(o.ToJSON(), "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal JSON")
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case "yaml":
		data, err := yaml.Marshal(o.ToJSON())
		if err != nil {
			return errors.Wrap(err, "failed to marshal YAML")
		}
		_, err = w.Write(data)
		return err
	default:
		return o.ToText(w)
	}
}

// setupFormatFlag registers --format and validates it before the command runs.
func setupFormatFlag(cmd *cobra.Command, formatPtr *string, def string, valid ...string) {
	cmd.Flags().StringVarP(formatPtr, "format", "f", def, "Output format: "+joinFormats(valid))
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		*formatPtr = util.NormalizeFormat(*formatPtr)
		return util.ValidateFormat(*formatPtr, valid...)
	}
}

func joinFormats(valid []string) string {
	out := ""
	for i, v := range valid {
		switch {
		case i == 0:
		case i == len(valid)-1:
			out += " or "
		default:
			out += ", "
		}
		out += v
	}
	return out
}
