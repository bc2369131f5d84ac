package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "finctl",
		Short: "Inspect and preview bank statement exports offline",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	var opts options
	rootCmd.PersistentFlags().StringVar(&opts.profilesFile, "profiles", "", "YAML file with bank profiles (default: built-in)")
	rootCmd.PersistentFlags().StringVar(&opts.profile, "profile", "fineco", "bank profile name")
	rootCmd.PersistentFlags().StringVar(&opts.locale, "locale", "it-IT", "locale for amounts")

	rootCmd.AddCommand(newInspectCommand(&opts))
	rootCmd.AddCommand(newPreviewCommand(&opts))
	rootCmd.AddCommand(newProfilesCommand(&opts))

	return rootCmd
}
