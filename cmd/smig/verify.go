package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkarpenko/smig/internal/config"
	"github.com/mkarpenko/smig/internal/schema"
	"github.com/mkarpenko/smig/internal/storage/sqlite"
	"github.com/mkarpenko/smig/internal/ui"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [table]",
	Short: "Show a table's column metadata",
	Long: `Print the columns a table currently has: name, declared type,
nullability, default, and primary-key flag, in declaration order.

With --columns, additionally check that the named columns are present and
exit non-zero listing any that are absent. The database is opened read-only;
verify never modifies the file.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		table := config.Table()
		if len(args) > 0 {
			table = args[0]
		}
		expected, _ := cmd.Flags().GetStringSlice("columns")

		store, err := sqlite.Open(rootCtx, resolveDatabasePath(), sqlite.Options{ReadOnly: true})
		if err != nil {
			fatalError(errorKind(err), "failed to open database: %v", err)
		}
		defer func() { _ = store.Close() }()

		cols, err := schema.Verify(rootCtx, store.DB(), table)
		if err != nil {
			if schema.IsTableMissing(err) {
				fatalError("table_missing", "no such table: %s", table)
			}
			fatalError(errorKind(err), "%v", err)
		}

		var missing []string
		if len(expected) > 0 {
			missing, err = schema.MissingColumns(rootCtx, store.DB(), table, expected)
			if err != nil {
				fatalError(errorKind(err), "%v", err)
			}
		}

		if jsonOutput {
			outputColumnsJSON(table, cols, expected, missing)
		} else {
			outputColumnsText(table, cols, missing)
		}
		if len(missing) > 0 {
			os.Exit(1)
		}
	},
}

func outputColumnsJSON(table string, cols []schema.ColumnInfo, expected, missing []string) {
	type columnJSON struct {
		CID      int     `json:"cid"`
		Name     string  `json:"name"`
		Type     string  `json:"type"`
		Nullable bool    `json:"nullable"`
		Default  *string `json:"default"`
		PK       bool    `json:"pk"`
	}
	out := make([]columnJSON, len(cols))
	for i, c := range cols {
		out[i] = columnJSON{
			CID:      c.CID,
			Name:     c.Name,
			Type:     c.Type,
			Nullable: !c.NotNull,
			PK:       c.PK,
		}
		if c.Default.Valid {
			v := c.Default.String
			out[i].Default = &v
		}
	}
	payload := map[string]interface{}{
		"table":   table,
		"columns": out,
	}
	if len(expected) > 0 {
		if missing == nil {
			missing = []string{}
		}
		payload["missing"] = missing
	}
	outputJSON(payload)
}

func outputColumnsText(table string, cols []schema.ColumnInfo, missing []string) {
	fmt.Printf("Table %s (%d columns):\n", table, len(cols))
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  CID\tNAME\tTYPE\tNULLABLE\tDEFAULT\tPK")
	for _, c := range cols {
		nullable := "yes"
		if c.NotNull {
			nullable = "no"
		}
		dflt := ""
		if c.Default.Valid {
			dflt = c.Default.String
		}
		pk := ""
		if c.PK {
			pk = "*"
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\t%s\n", c.CID, c.Name, c.Type, nullable, dflt, pk)
	}
	_ = w.Flush()

	for _, m := range missing {
		fmt.Printf("%s\n", ui.RenderFail(fmt.Sprintf("%s column %q is missing", ui.IconFail, m)))
	}
}

func init() {
	verifyCmd.Flags().StringSlice("columns", nil, "Comma-separated columns that must be present")
	rootCmd.AddCommand(verifyCmd)
}
