package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
	"github.com/zatekoja/medlibrary/internal/domain/repositories"
	"github.com/zatekoja/medlibrary/pkg/errors"
)

var contentFilter repositories.ContentFilter

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Read educational articles",
}

var contentGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print an article with all of its levels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		article, err := contentRepo.GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), article)
	},
}

var contentLevelCmd = &cobra.Command{
	Use:   "level <id> <level>",
	Short: "Print one reading level of an article",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.NewValidationError("level must be an integer")
		}
		lc, err := contentRepo.GetLevel(cmd.Context(), args[0], level)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), lc)
	},
}

var contentLevelsCmd = &cobra.Command{
	Use:   "levels <id>",
	Short: "List the reading levels an article provides",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		article, err := contentRepo.GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":     article.ID,
			"levels": article.LevelNumbers(),
		})
	},
}

var contentSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search article names and keywords",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := ""
		if len(args) == 1 {
			q = args[0]
		}
		articles, err := contentRepo.Search(cmd.Context(), q)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), summaries(articles))
	},
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles matching the given filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		articles, err := contentRepo.List(cmd.Context(), contentFilter)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), summaries(articles))
	},
}

var contentRefsCmd = &cobra.Command{
	Use:   "refs <id>",
	Short: "Resolve the cross-references of an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		refs, err := contentRepo.CrossReferences(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := make([]map[string]any, 0, len(refs))
		for _, ref := range refs {
			row := map[string]any{
				"targetId":     ref.TargetID,
				"relationship": ref.Relationship,
				"dangling":     ref.Dangling(),
			}
			if !ref.Dangling() {
				row["targetName"] = ref.Target.Name
			}
			out = append(out, row)
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	contentListCmd.Flags().StringVar(&contentFilter.Tag, "tag", "", "tag to match (case-insensitive)")
	contentListCmd.Flags().StringVar(&contentFilter.Type, "type", "", "content type")
	contentListCmd.Flags().StringVar(&contentFilter.ClinicalRelevance, "relevance", "", "clinical relevance")
	contentListCmd.Flags().StringVar(&contentFilter.Status, "status", "", "publication status")

	contentCmd.AddCommand(contentGetCmd, contentLevelCmd, contentLevelsCmd, contentSearchCmd, contentListCmd, contentRefsCmd)
}

type articleRow struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Levels []int  `json:"levels"`
}

func summaries(articles []*entities.EducationalContent) []articleRow {
	rows := make([]articleRow, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, articleRow{ID: a.ID, Type: string(a.Type), Name: a.Name, Levels: a.LevelNumbers()})
	}
	return rows
}
