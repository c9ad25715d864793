package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/technique"
)

// techniqueListing is the serializable form used by json and yaml
// output.
type techniqueListing struct {
	Name        string `json:"name" yaml:"name"`
	Kind        string `json:"kind" yaml:"kind"`
	Description string `json:"description" yaml:"description"`
}

// techniquesCmd represents the techniques command.
var techniquesCmd = &cobra.Command{
	Use:   "techniques",
	Short: "List available filtering and segmentation techniques",
	Long: `List the predefined techniques this tool can apply.

Examples:
  imagelab techniques
  imagelab techniques --format json
  imagelab techniques --format yaml`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		all := technique.All()
		listings := make([]techniqueListing, len(all))
		for i, t := range all {
			listings[i] = techniqueListing{
				Name:        t.Name(),
				Kind:        string(t.Kind()),
				Description: t.Description(),
			}
		}

		out := cmd.OutOrStdout()
		switch format {
		case "text":
			for _, l := range listings {
				fmt.Fprintf(out, "%-20s %-13s %s\n", l.Name, l.Kind, l.Description)
			}
			return nil
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(listings)
		case "yaml":
			enc := yaml.NewEncoder(out)
			defer func() { _ = enc.Close() }()
			return enc.Encode(listings)
		default:
			return fmt.Errorf("invalid output format: %s (must be one of: text, json, yaml)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(techniquesCmd)
	techniquesCmd.Flags().StringP("format", "f", "text", "output format (text, json, yaml)")
}

// GetTechniquesCommand returns the techniques command for testing
// purposes.
func GetTechniquesCommand() *cobra.Command {
	return techniquesCmd
}
