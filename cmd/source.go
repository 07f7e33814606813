package cmd

import (
	"context"
	"os"

	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/server"
	"github.com/emrgen/research/internal/service"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "source commands",
}

func init() {
	rootCmd.AddCommand(sourceCmd)
	sourceCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	sourceCmd.AddCommand(copiesSourceCmd())
	sourceCmd.AddCommand(mergeSourceCmd())
	sourceCmd.AddCommand(dedupeSourceCmd())
}

func printSources(sources []*model.Source) error {
	if jsonOutput {
		return printJSON(sources)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Title", "ISSN", "Scopus ID", "Type"})
	for _, s := range sources {
		table.Append([]string{uintString(s.ID), s.Title, s.ISSN, s.ScopusID, string(s.Type)})
	}
	table.Render()

	return nil
}

func printMergeResult(result *service.MergeResult) error {
	if jsonOutput {
		return printJSON(result)
	}

	printField("Source", uintString(result.Source.ID))
	if len(result.Removed) == 0 {
		logrus.Info("no source merged")
		return nil
	}

	return printSources(result.Removed)
}

func copiesSourceCmd() *cobra.Command {
	var sourceID uint

	var required = []string{"source-id"}

	command := &cobra.Command{
		Use:     "copies",
		Short:   "list the sources that look like copies of a source",
		Example: "research source copies -s <source-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				copies, err := app.Sources.SearchCopies(ctx, sourceID)
				if err != nil {
					return err
				}
				return printSources(copies)
			})
		},
	}

	command.Flags().UintVarP(&sourceID, "source-id", "s", 0, "source id (required)")

	return command
}

func mergeSourceCmd() *cobra.Command {
	var sourceID uint
	var copyIDs []uint

	var required = []string{"source-id", "ids"}

	command := &cobra.Command{
		Use:     "merge",
		Short:   "merge sources into a source",
		Example: "research source merge -s <source-id> --ids 4,5",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				result, err := app.Sources.Merge(ctx, sourceID, copyIDs)
				if err != nil {
					return err
				}
				return printMergeResult(result)
			})
		},
	}

	command.Flags().UintVarP(&sourceID, "source-id", "s", 0, "source id to keep (required)")
	command.Flags().UintSliceVar(&copyIDs, "ids", nil, "source ids to fold into it (required)")

	command.Flags().SortFlags = false

	return command
}

func dedupeSourceCmd() *cobra.Command {
	var sourceID uint
	var all bool

	command := &cobra.Command{
		Use:     "dedupe",
		Short:   "search and merge the copies of a source, or of every source",
		Example: "research source dedupe -s <source-id>\nresearch source dedupe --all",
		Run: func(cmd *cobra.Command, args []string) {
			if !all && checkMissingFlags(cmd, []string{"source-id"}) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				if all {
					removed, err := app.Sources.MergeAll(ctx)
					if err != nil {
						return err
					}
					logrus.Infof("%d sources merged", removed)
					return nil
				}

				result, err := app.Sources.MergeDuplicates(ctx, sourceID)
				if err != nil {
					return err
				}
				return printMergeResult(result)
			})
		},
	}

	command.Flags().UintVarP(&sourceID, "source-id", "s", 0, "source id")
	command.Flags().BoolVar(&all, "all", false, "dedupe every source")

	command.Flags().SortFlags = false

	return command
}
