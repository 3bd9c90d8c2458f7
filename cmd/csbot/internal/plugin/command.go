package plugin

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/csyork/csbot/cmd/csbot/internal"
	"github.com/csyork/csbot/pkg/plugin/builtin"
)

// NewPluginsCommand lists the built-in plugins and whether the config at
// *configPath enables them.
func NewPluginsCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List built-in plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := internal.LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}

			enabled := make([]string, 0)
			for _, e := range builtin.Select(cfg.Core().Plugins) {
				enabled = append(enabled, e.Name)
			}

			out := cmd.OutOrStdout()
			for _, name := range builtin.Names() {
				status := "disabled"
				if i := slices.Index(enabled, name); i >= 0 {
					status = fmt.Sprintf("enabled (load order %d)", i+1)
				}
				if _, err := fmt.Fprintf(out, "%-10s %s\n", name, status); err != nil {
					return err
				}
			}
			return nil
		},
	}

	return cmd
}
