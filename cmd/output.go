package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/emrgen/research/internal/config"
	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/server"
	"github.com/emrgen/research/internal/service"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// withApp wires the services from the environment and runs f, logging any error.
func withApp(f func(ctx context.Context, app *server.App) error) {
	app, err := server.NewApp(config.LoadConfig())
	if err != nil {
		logrus.Error(err)
		return
	}
	defer func() {
		if err := app.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	if err := f(context.Background(), app); err != nil {
		logrus.Error(err)
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	return nil
}

func printDocument(doc *model.Document) error {
	if jsonOutput {
		return printJSON(doc)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Kind", "Title", "Authors", "Scopus ID"})
	table.Append([]string{uintString(doc.ID), string(doc.Kind), doc.Title, doc.AuthorsStr, doc.ScopusID})
	table.Render()

	for _, a := range doc.Authorships {
		if a.IsConfirmed() {
			printField(doc.AuthorAt(a.Position), fmt.Sprintf("verified by %d", *a.ResearchEntityID))
		}
	}

	return nil
}

func printOutcome(outcome *service.Outcome) error {
	return printOutcomes([]*service.Outcome{outcome})
}

func printOutcomes(outcomes []*service.Outcome) error {
	if jsonOutput {
		return printJSON(outcomes)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Result", "Document", "Detail"})
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			table.Append([]string{uintString(o.ID), "error", "", o.Err.Error()})
		case o.Rejected():
			table.Append([]string{uintString(o.ID), "rejected", "", o.Rejection.Error})
		case o.Document != nil:
			table.Append([]string{uintString(o.ID), "ok", uintString(o.Document.ID), string(o.Document.Kind)})
		default:
			table.Append([]string{uintString(o.ID), "ok", "", ""})
		}
	}
	table.Render()

	return nil
}

func printLedgerOutcomes(outcomes []*service.LedgerOutcome) error {
	if jsonOutput {
		return printJSON(outcomes)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Result", "Deleted", "Detail"})
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			table.Append([]string{uintString(o.ID), "error", "", o.Err.Error()})
		case o.Rejection != nil:
			table.Append([]string{uintString(o.ID), "rejected", "", o.Rejection.Error})
		default:
			table.Append([]string{uintString(o.ID), "ok", strconv.FormatBool(o.Deleted), ""})
		}
	}
	table.Render()

	return nil
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

// checkMissingFlags checks if the required flags are set and returns ok if they are set
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if !cmd.Flag(required).Changed {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Green("provide: %s\n", provided)
		}

		cmd.Println("")

		cmd.Usage()

		return true
	}

	return false
}

// verificationFlags collects the claim a research entity makes when verifying.
type verificationFlags struct {
	position      int
	affiliations  []uint
	corresponding bool
	public        bool
	favorite      bool
}

func (v *verificationFlags) register(command *cobra.Command) {
	command.Flags().IntVar(&v.position, "position", -1, "author position, defaults to the draft authorship")
	command.Flags().UintSliceVar(&v.affiliations, "affiliations", nil, "affiliation institute ids")
	command.Flags().BoolVar(&v.corresponding, "corresponding", false, "corresponding author")
	command.Flags().BoolVar(&v.public, "public", false, "show on the public profile")
	command.Flags().BoolVar(&v.favorite, "favorite", false, "mark as favorite")
}

func (v *verificationFlags) input() *service.VerificationInput {
	in := &service.VerificationInput{
		AffiliationInstituteIDs: v.affiliations,
		Corresponding:           v.corresponding,
		Public:                  v.public,
		Favorite:                v.favorite,
	}
	if v.position >= 0 {
		position := v.position
		in.Position = &position
	}

	return in
}
