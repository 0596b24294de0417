package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mpm/internal/app"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "install [packages...]",
		Aliases: []string{"i"},
		Short:   "Install the dependencies of package.json",
		Long: "Install resolves package.json, installs every package into node_modules and writes mpm.yml.\n" +
			"Package arguments are added to the manifest first, like the add command.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Install(cmd.Context(), installOptions(cmd, args))
		},
	}
	addInstallFlags(cmd)
	return cmd
}

func (c *CLI) newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <packages...>",
		Short: "Add packages to package.json and install them",
		Example: "  mpm add react@18.2.0\n" +
			"  mpm add -D @types/node",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Install(cmd.Context(), installOptions(cmd, args))
		},
	}
	addInstallFlags(cmd)
	return cmd
}

func addInstallFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("dev", "D", false, "Save packages to devDependencies")
	cmd.Flags().Bool("save-dev", false, "Alias for --dev")
	cmd.Flags().Bool("production", false, "Skip devDependencies")
}

func installOptions(cmd *cobra.Command, args []string) app.InstallOptions {
	dev, _ := cmd.Flags().GetBool("dev")
	saveDev, _ := cmd.Flags().GetBool("save-dev")
	production, _ := cmd.Flags().GetBool("production")

	return app.InstallOptions{
		Packages:   args,
		Dev:        dev || saveDev,
		Production: production,
	}
}
