package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/emrgen/research/internal/server"
	"github.com/emrgen/research/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "draft commands",
}

func init() {
	rootCmd.AddCommand(draftCmd)
	draftCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	draftCmd.AddCommand(createDraftCmd())
	draftCmd.AddCommand(updateDraftCmd())
	draftCmd.AddCommand(deleteDraftCmd())
	draftCmd.AddCommand(verifyDraftCmd())
}

// draftFlags collects the editable draft fields and a single draft authorship.
type draftFlags struct {
	in            service.DraftInput
	sourceID      uint
	position      int
	affiliations  []uint
	corresponding bool
}

func (d *draftFlags) register(command *cobra.Command) {
	command.Flags().StringVarP(&d.in.Title, "title", "t", "", "title of the document")
	command.Flags().StringVarP(&d.in.AuthorsStr, "authors", "a", "", "comma separated author names")
	command.Flags().StringVar(&d.in.ScopusID, "scopus-id", "", "scopus id")
	command.Flags().StringVar(&d.in.DOI, "doi", "", "doi")
	command.Flags().StringVar(&d.in.Year, "year", "", "publication year")
	command.Flags().StringVar(&d.in.Abstract, "abstract", "", "abstract")
	command.Flags().StringVar(&d.in.DocumentType, "type", "", "document type")
	command.Flags().UintVar(&d.sourceID, "source-id", 0, "source id")
	command.Flags().IntVar(&d.position, "position", -1, "author position of the creator")
	command.Flags().UintSliceVar(&d.affiliations, "affiliations", nil, "affiliation institute ids of the author position")
	command.Flags().BoolVar(&d.corresponding, "corresponding", false, "corresponding author")
}

func (d *draftFlags) input() *service.DraftInput {
	in := d.in
	if d.sourceID != 0 {
		sourceID := d.sourceID
		in.SourceID = &sourceID
	}
	if d.position >= 0 {
		in.Authorships = []service.DraftAuthorship{{
			Position:                d.position,
			AffiliationInstituteIDs: d.affiliations,
			Corresponding:           d.corresponding,
		}}
	}

	return &in
}

func readDraftFile(path string) ([]*service.DraftInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var inputs []*service.DraftInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, err
	}

	return inputs, nil
}

func createDraftCmd() *cobra.Command {
	var entityID uint
	var file string
	var flags draftFlags

	var required = []string{"entity-id"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a draft",
		Long:    `create a draft from flags, or several drafts from a json file holding a list of drafts`,
		Example: "research draft create -e <entity-id> -t <title> -a <authors> --position 0 --affiliations 3",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				if file != "" {
					inputs, err := readDraftFile(file)
					if err != nil {
						return err
					}
					return printOutcomes(app.Documents.CreateDrafts(ctx, entityID, inputs))
				}

				draft, err := app.Documents.CreateDraft(ctx, entityID, flags.input())
				if err != nil {
					return err
				}
				return printDocument(draft)
			})
		},
	}

	command.Flags().UintVarP(&entityID, "entity-id", "e", 0, "research entity id (required)")
	command.Flags().StringVarP(&file, "file", "f", "", "json file with a list of drafts")
	flags.register(command)

	command.Flags().SortFlags = false

	return command
}

func updateDraftCmd() *cobra.Command {
	var entityID uint
	var draftID uint
	var flags draftFlags

	var required = []string{"entity-id", "doc-id"}

	command := &cobra.Command{
		Use:     "update",
		Short:   "update a draft",
		Long:    `replace the fields of a draft, the authorship is replaced only when a position is given`,
		Example: "research draft update -e <entity-id> -d <draft-id> -t <title> -a <authors>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				draft, err := app.Documents.UpdateDraft(ctx, entityID, draftID, flags.input())
				if err != nil {
					return err
				}
				return printDocument(draft)
			})
		},
	}

	command.Flags().UintVarP(&entityID, "entity-id", "e", 0, "research entity id (required)")
	command.Flags().UintVarP(&draftID, "doc-id", "d", 0, "draft id (required)")
	flags.register(command)

	command.Flags().SortFlags = false

	return command
}

func deleteDraftCmd() *cobra.Command {
	var entityID uint
	var draftIDs []uint

	var required = []string{"entity-id", "ids"}

	command := &cobra.Command{
		Use:     "delete",
		Short:   "delete drafts",
		Example: "research draft delete -e <entity-id> --ids 7,8",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				return printOutcomes(app.Documents.DeleteDrafts(ctx, entityID, draftIDs))
			})
		},
	}

	command.Flags().UintVarP(&entityID, "entity-id", "e", 0, "research entity id (required)")
	command.Flags().UintSliceVar(&draftIDs, "ids", nil, "draft ids (required)")

	command.Flags().SortFlags = false

	return command
}

func verifyDraftCmd() *cobra.Command {
	var entityID uint
	var draftID uint
	var draftIDs []uint
	var flags verificationFlags

	var required = []string{"entity-id"}

	command := &cobra.Command{
		Use:     "verify",
		Short:   "verify a draft",
		Long:    `promote a draft to a verified document, or merge it into its verified copy`,
		Example: "research draft verify -e <entity-id> -d <draft-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				if len(draftIDs) > 0 {
					return printOutcomes(app.Documents.VerifyDrafts(ctx, entityID, draftIDs))
				}

				outcome, err := app.Documents.VerifyDraft(ctx, entityID, draftID, flags.input())
				if err != nil {
					return err
				}
				if !outcome.Rejected() && outcome.Document.ID != draftID {
					logrus.Infof("draft %d merged into document %d", draftID, outcome.Document.ID)
				}
				return printOutcome(outcome)
			})
		},
	}

	command.Flags().UintVarP(&entityID, "entity-id", "e", 0, "research entity id (required)")
	command.Flags().UintVarP(&draftID, "doc-id", "d", 0, "draft id")
	command.Flags().UintSliceVar(&draftIDs, "ids", nil, "verify several drafts with their default authorship")
	flags.register(command)

	command.Flags().SortFlags = false

	return command
}
