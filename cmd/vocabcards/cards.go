package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/vocabcards/internal/models"
	"github.com/lehmann314159/vocabcards/internal/services"
)

func newCardCmd(a *app) *cobra.Command {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Word card commands",
	}

	cardCmd.AddCommand(
		newCardSaveCmd(a),
		&cobra.Command{
			Use:   "get <word>",
			Short: "Print the card for a word, or null",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				card, err := a.cards.GetWordCardByWord(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, card)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print every card",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cards, err := a.cards.GetAllWordCards(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, cards)
			},
		},
		&cobra.Command{
			Use:   "familiarity <id> <level>",
			Short: "Set the familiarity level (0-3) of a card",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(services.CmdUpdateWordCardFamiliarity, args[0])
				if err != nil {
					return err
				}
				level, err := strconv.Atoi(args[1])
				if err != nil {
					return models.NewValidationError(services.CmdUpdateWordCardFamiliarity, args[1], services.MsgInvalidFamiliarity)
				}
				return a.cards.UpdateWordCardFamiliarity(cmd.Context(), id, level)
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a card",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(services.CmdDeleteWordCard, args[0])
				if err != nil {
					return err
				}
				return a.cards.DeleteWordCard(cmd.Context(), id)
			},
		},
		&cobra.Command{
			Use:   "seen <id>",
			Short: "Record another sighting of a card",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(services.CmdIncrementWordCardSeenCount, args[0])
				if err != nil {
					return err
				}
				return a.cards.IncrementWordCardSeenCount(cmd.Context(), id)
			},
		},
	)
	return cardCmd
}

func newCardSaveCmd(a *app) *cobra.Command {
	var (
		card   models.NewWordCard
		lookup bool
	)

	saveCmd := &cobra.Command{
		Use:   "save <word>",
		Short: "Save a card, or count another sighting of a saved word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			payload := &card

			if lookup {
				entry, err := a.dictionary().Lookup(ctx, args[0])
				if err != nil {
					return fmt.Errorf("dictionary lookup failed: %w", err)
				}
				if payload, err = services.CardFromDictionary(entry); err != nil {
					return err
				}
			}
			payload.Word = args[0]

			flags := cmd.Flags()
			if flags.Changed("familiarity") {
				v, _ := flags.GetInt("familiarity")
				payload.Familiarity = &v
			}
			if flags.Changed("seen-count") {
				v, _ := flags.GetInt("seen-count")
				payload.SeenCount = &v
			}
			for name, field := range map[string]**string{
				"pos":           &payload.Pos,
				"definition":    &payload.Definition,
				"pronunciation": &payload.Pronunciation,
				"verbs":         &payload.Verbs,
			} {
				if flags.Changed(name) {
					v, _ := flags.GetString(name)
					*field = &v
				}
			}

			if err := a.cards.SaveWordCard(ctx, payload); err != nil {
				return err
			}
			saved, err := a.cards.GetWordCardByWord(ctx, payload.Word)
			if err != nil {
				return err
			}
			return printJSON(cmd, saved)
		},
	}
	saveCmd.Flags().BoolVar(&lookup, "lookup", false, "fill the card from the dictionary")
	saveCmd.Flags().String("pos", "", "parts of speech")
	saveCmd.Flags().String("definition", "", "definition text")
	saveCmd.Flags().String("pronunciation", "", "pronunciation")
	saveCmd.Flags().String("verbs", "", "verb forms")
	saveCmd.Flags().Int("familiarity", 0, "familiarity level (0-3)")
	saveCmd.Flags().Int("seen-count", 1, "initial seen count")

	return saveCmd
}

func newImportCmd(a *app) *cobra.Command {
	var delay time.Duration

	importCmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Look up a list of words, one per line, and save them as cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open word list: %w", err)
				}
				defer f.Close()
				src = f
			}

			words, err := services.ParseWordList(src)
			if err != nil {
				return err
			}

			importer := services.NewImportService(a.cards, a.dictionary(), a.log.Logger)
			importer.SetDelay(delay)

			summary, err := importer.ImportWords(cmd.Context(), words)
			if summary != nil {
				for _, r := range summary.Results {
					if r.Error != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s: %s\n", r.Status, r.Word, r.Error)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", r.Status, r.Word)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d, failed %d, already present %d\n",
					summary.Success, summary.Failed, summary.Exists)
			}
			return err
		},
	}
	importCmd.Flags().DurationVar(&delay, "delay", services.DefaultImportDelay, "pause between dictionary requests")

	return importCmd
}

func newExportCmd(a *app) *cobra.Command {
	var output string

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write every card as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" || output == "-" {
				return a.cards.ExportCSV(cmd.Context(), cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := a.cards.ExportCSV(cmd.Context(), f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return exportCmd
}

// parseID reads a card id argument
func parseID(op, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, models.NewValidationError(op, arg, services.MsgInvalidID)
	}
	return id, nil
}
