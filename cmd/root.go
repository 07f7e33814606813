package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var jsonOutput bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "research",
	Short: "research output verification tool",
	Example: `research db migrate
research draft create -e <entity-id> -t <title> -a <authors> --position 0 --affiliations 3
research draft verify -e <entity-id> -d <draft-id>
research document verify -e <entity-id> -d <doc-id> --position 1 --affiliations 3,4
research document discard -e <entity-id> --ids 4,5,6
research document remove-verify -e <entity-id> -d <doc-id> --discard-id <doc-id>
research source dedupe --all
research worker`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as json")

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
