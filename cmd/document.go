package cmd

import (
	"context"
	"strconv"

	"github.com/emrgen/research/internal/server"
	"github.com/emrgen/research/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "document commands",
}

func init() {
	rootCmd.AddCommand(documentCmd)
	documentCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	documentCmd.AddCommand(verifyDocCmd())
	documentCmd.AddCommand(unverifyDocCmd())
	documentCmd.AddCommand(removeVerifyDocCmd())
	documentCmd.AddCommand(discardDocCmd())
	documentCmd.AddCommand(undiscardDocCmd())
	documentCmd.AddCommand(copyDocCmd())
	documentCmd.AddCommand(notDuplicateDocCmd())
	documentCmd.AddCommand(favoriteDocCmd())
	documentCmd.AddCommand(privacyDocCmd())
}

func verifyDocCmd() *cobra.Command {
	var entityID uint
	var docID uint
	var docIDs []uint
	var flags verificationFlags

	var required = []string{"entity-id"}

	command := &cobra.Command{
		Use:     "verify",
		Short:   "verify a verified or external document",
		Long:    `claim an authorship on a document, external documents are copied and merged into their verified copy`,
		Example: "research document verify -e <entity-id> -d <doc-id> --position 1 --affiliations 3,4",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				if len(docIDs) > 0 {
					return printOutcomes(app.Documents.VerifyDocuments(ctx, entityID, docIDs))
				}

				outcome, err := app.Documents.VerifyDocument(ctx, entityID, docID, flags.input())
				if err != nil {
					return err
				}
				return printOutcome(outcome)
			})
		},
	}

	command.Flags().UintVarP(&entityID, "entity-id", "e", 0, "research entity id (required)")
	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document id")
	command.Flags().UintSliceVar(&docIDs, "ids", nil, "verify several documents with their default authorship")
	flags.register(command)

	command.Flags().SortFlags = false

	return command
}

func unverifyDocCmd() *cobra.Command {
	var entityID uint
	var docID uint

	var required = []string{"entity-id", "doc-id"}

	command := &cobra.Command{
		Use:     "unverify",
		Short:   "drop the authorship of a research entity",
		Example: "research document unverify -e <entity-id> -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				deleted, err := app.Documents.UnverifyDocument(ctx, entityID, docID)
				if err != nil {
					return err
				}

				logrus.Infof("document %d unverified", docID)
				if deleted {
					logrus.Infof("document %d deleted, nobody verified it any more", docID)
				}
				return nil
			})
		},
	}

	command.Flags().UintVarP(&entityID, "entity-id", "e", 0, "research entity id (required)")
	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document id (required)")

	command.Flags().SortFlags = false

	return command
}

func removeVerifyDocCmd() *cobra.Command {
	var entityID uint
	var docID uint
	var discardID uint
	var flags verificationFlags

	var required = []string{"entity-id", "doc-id", "discard-id"}

	command := &cobra.Command{
		Use:     "remove-verify",
		Short:   "verify a document in place of a discarded one",
		Long:    `discard a document the research entity holds and verify another one, nothing changes when the verification is rejected`,
		Example: "research document remove-verify -e <entity-id> -d <doc-id> --discard-id <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				outcome, err := app.Documents.RemoveVerify(ctx, entityID, docID, flags.input(), discardID)
				if err != nil {
					return err
				}
				return printOutcome(outcome)
			})
		},
	}

	command.Flags().UintVarP(&entityID, "entity-id", "e", 0, "research entity id (required)")
	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document to verify (required)")
	command.Flags().UintVar(&discardID, "discard-id", 0, "document to discard (required)")
	flags.register(command)

	command.Flags().SortFlags = false

	return command
}

func discardDocCmd() *cobra.Command {
	var entityID uint
	var docIDs []uint

	var required = []string{"entity-id", "ids"}

	command := &cobra.Command{
		Use:     "discard",
		Short:   "hide documents from a research entity",
		Example: "research document discard -e <entity-id> --ids 4,5,6",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				return printLedgerOutcomes(app.Discards.DiscardDocuments(ctx, entityID, docIDs))
			})
		},
	}

	command.Flags().UintVarP(&entityID, "entity-id", "e", 0, "research entity id (required)")
	command.Flags().UintSliceVar(&docIDs, "ids", nil, "document ids (required)")

	command.Flags().SortFlags = false

	return command
}

func undiscardDocCmd() *cobra.Command {
	var entityID uint
	var docID uint

	var required = []string{"entity-id", "doc-id"}

	command := &cobra.Command{
		Use:     "undiscard",
		Short:   "restore a discarded document",
		Example: "research document undiscard -e <entity-id> -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				outcome, err := app.Discards.UndiscardDocument(ctx, entityID, docID)
				if err != nil {
					return err
				}
				return printLedgerOutcomes([]*service.LedgerOutcome{outcome})
			})
		},
	}

	command.Flags().UintVarP(&entityID, "entity-id", "e", 0, "research entity id (required)")
	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document id (required)")

	command.Flags().SortFlags = false

	return command
}

func copyDocCmd() *cobra.Command {
	var entityID uint
	var docIDs []uint

	var required = []string{"entity-id", "ids"}

	command := &cobra.Command{
		Use:     "copy",
		Short:   "copy documents into private drafts",
		Example: "research document copy -e <entity-id> --ids 4,5",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				return printOutcomes(app.Documents.CopyDocuments(ctx, entityID, docIDs))
			})
		},
	}

	command.Flags().UintVarP(&entityID, "entity-id", "e", 0, "research entity id (required)")
	command.Flags().UintSliceVar(&docIDs, "ids", nil, "document ids (required)")

	command.Flags().SortFlags = false

	return command
}

func notDuplicateDocCmd() *cobra.Command {
	var entityID uint
	var docID uint
	var duplicateID uint

	var required = []string{"entity-id", "doc-id", "duplicate-id"}

	command := &cobra.Command{
		Use:     "not-duplicate",
		Short:   "mark two documents as distinct publications",
		Example: "research document not-duplicate -e <entity-id> -d <doc-id> --duplicate-id <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				mark, err := app.Discards.SetDocumentAsNotDuplicate(ctx, entityID, docID, duplicateID)
				if err != nil {
					return err
				}

				if jsonOutput {
					return printJSON(mark)
				}
				logrus.Infof("documents %d and %d marked as not duplicate", mark.DocumentID, mark.DuplicateID)
				return nil
			})
		},
	}

	command.Flags().UintVarP(&entityID, "entity-id", "e", 0, "research entity id (required)")
	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document id (required)")
	command.Flags().UintVar(&duplicateID, "duplicate-id", 0, "document id of the suspected duplicate (required)")

	command.Flags().SortFlags = false

	return command
}

func favoriteDocCmd() *cobra.Command {
	var entityID uint
	var docID uint
	var unset bool

	var required = []string{"entity-id", "doc-id"}

	command := &cobra.Command{
		Use:     "favorite",
		Short:   "mark the authorship of a research entity as favorite",
		Example: "research document favorite -e <entity-id> -d <doc-id>\nresearch document favorite -e <entity-id> -d <doc-id> --unset",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				authorship, err := app.Documents.SetAuthorshipFavorite(ctx, entityID, docID, !unset)
				if err != nil {
					return err
				}

				if jsonOutput {
					return printJSON(authorship)
				}
				printField("Favorite", strconv.FormatBool(authorship.Favorite))
				return nil
			})
		},
	}

	command.Flags().UintVarP(&entityID, "entity-id", "e", 0, "research entity id (required)")
	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document id (required)")
	command.Flags().BoolVar(&unset, "unset", false, "remove the favorite mark")

	command.Flags().SortFlags = false

	return command
}

func privacyDocCmd() *cobra.Command {
	var entityID uint
	var docID uint
	var public bool

	var required = []string{"entity-id", "doc-id"}

	command := &cobra.Command{
		Use:     "privacy",
		Short:   "show or hide an authorship on the public profile",
		Example: "research document privacy -e <entity-id> -d <doc-id> --public",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			withApp(func(ctx context.Context, app *server.App) error {
				authorship, err := app.Documents.SetAuthorshipPrivacy(ctx, entityID, docID, public)
				if err != nil {
					return err
				}

				if jsonOutput {
					return printJSON(authorship)
				}
				printField("Public", strconv.FormatBool(authorship.Public))
				return nil
			})
		},
	}

	command.Flags().UintVarP(&entityID, "entity-id", "e", 0, "research entity id (required)")
	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document id (required)")
	command.Flags().BoolVar(&public, "public", false, "show on the public profile")

	command.Flags().SortFlags = false

	return command
}
