package main

import (
	"github.com/spf13/cobra"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
	"github.com/zatekoja/medlibrary/internal/domain/repositories"
)

var procedureFilter repositories.ProcedureFilter

var proceduresCmd = &cobra.Command{
	Use:   "procedures",
	Short: "Read the procedure reference tables",
	Long: `Every procedure command addresses one store:
  general, emergency, endoscopic, interventional-radiology, surgical`,
}

var proceduresGetCmd = &cobra.Command{
	Use:   "get <store> <procedureId>",
	Short: "Print one procedure",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := procedureRepo.GetByID(cmd.Context(), entities.StoreName(args[0]), args[1])
		if err != nil {
			return err
		}
		if lang != "" {
			return printJSON(cmd.OutOrStdout(), entry.Localize(entities.ParseLocale(lang)))
		}
		return printJSON(cmd.OutOrStdout(), entry)
	},
}

var proceduresListCmd = &cobra.Command{
	Use:   "list <store>",
	Short: "List procedures matching the given filters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := procedureRepo.List(cmd.Context(), entities.StoreName(args[0]), procedureFilter)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), procedureRows(entries))
	},
}

var proceduresSearchCmd = &cobra.Command{
	Use:   "search <store> <query>",
	Short: "Search a store's names, synonyms and keywords",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := ""
		if len(args) == 2 {
			q = args[1]
		}
		entries, err := procedureRepo.Search(cmd.Context(), entities.StoreName(args[0]), q)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), procedureRows(entries))
	},
}

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List the procedure stores",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stores, err := procedureRepo.Stores(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), stores)
	},
}

func init() {
	flags := proceduresListCmd.Flags()
	flags.StringVar(&procedureFilter.Category, "category", "", "procedure category")
	flags.StringVar(&procedureFilter.Complexity, "complexity", "", "complexity level")
	flags.StringVar(&procedureFilter.Specialty, "specialty", "", "specialty substring")
	flags.StringVar(&procedureFilter.BodyRegion, "body-region", "", "body region substring")
	flags.StringVar(&procedureFilter.Setting, "setting", "", "care setting")
	flags.StringVar(&procedureFilter.Anesthesia, "anesthesia", "", "anesthesia type")
	flags.StringVar(&procedureFilter.Group, "group", "", "emergency group")

	proceduresCmd.AddCommand(proceduresGetCmd, proceduresListCmd, proceduresSearchCmd)
}

type procedureRow struct {
	ProcedureID string `json:"procedureId"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Complexity  string `json:"complexity"`
}

// procedureRows renders entries in the --lang locale, English by default
func procedureRows(entries []*entities.ProcedureEntry) []procedureRow {
	locale := entities.ParseLocale(lang)
	rows := make([]procedureRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, procedureRow{
			ProcedureID: e.ProcedureID,
			Name:        e.Name.In(locale),
			Category:    string(e.Category),
			Complexity:  string(e.Complexity),
		})
	}
	return rows
}
