package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soypat/figure3d"
)

func newSkiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "skies",
		Short: "List the built-in sky presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tDETAIL")
			for _, p := range figure3d.Presets() {
				kind, detail := describeSky(p.Sky)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, kind, detail)
			}
			return tw.Flush()
		},
	}
}

func describeSky(sky figure3d.Sky) (kind, detail string) {
	switch s := sky.(type) {
	case *figure3d.SkyPhoto:
		return "photo", s.URL().String()
	case figure3d.SkySolid:
		return "solid", s.Color.Hex()
	case figure3d.SkyGradient:
		return "gradient", s.Bottom.Hex() + " -> " + s.Top.Hex()
	case figure3d.NoSky:
		return "none", "-"
	}
	return fmt.Sprintf("%T", sky), ""
}
