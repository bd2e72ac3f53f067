package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/zatekoja/medlibrary/internal/adapters/memory"
	"github.com/zatekoja/medlibrary/internal/catalog"
	"github.com/zatekoja/medlibrary/internal/domain/repositories"
	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
)

var (
	// lang selects the locale of procedure output; empty keeps both languages
	lang string
	// compact disables indented JSON output
	compact bool

	lib           *catalog.Catalog
	contentRepo   repositories.ContentRepository
	procedureRepo repositories.ProcedureRepository
)

var rootCmd = &cobra.Command{
	Use:   "medlib",
	Short: "Query the embedded health education library",
	Long: `medlib reads the embedded article and procedure catalog.

Available subcommands:
  content    - Read, search and list educational articles
  procedures - Read, search and list procedure reference tables
  stores     - List the procedure stores with their sizes
  validate   - Check the catalog for structural problems`,
	SilenceUsage:      true,
	PersistentPreRunE: loadCatalog,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "", "locale for procedure output (en, es)")
	rootCmd.PersistentFlags().BoolVar(&compact, "compact", false, "print compact JSON")

	rootCmd.AddCommand(contentCmd, proceduresCmd, storesCmd, validateCmd)
}

func main() {
	observability.InitLogger(observability.LoggerOptions{
		Service: "medlib",
		Level:   "warn",
		Output:  os.Stderr,
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func loadCatalog(cmd *cobra.Command, args []string) error {
	if lib != nil {
		return nil
	}
	c, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	lib = c
	contentRepo = memory.NewContentAdapter(c, nil)
	procedureRepo = memory.NewProcedureAdapter(c, nil)
	return nil
}

func printJSON(w io.Writer, v any) error {
	var (
		data []byte
		err  error
	)
	if compact {
		data, err = json.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
