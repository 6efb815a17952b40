package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkarpenko/smig/internal/migrations"
	"github.com/mkarpenko/smig/internal/schema"
	"github.com/mkarpenko/smig/internal/storage/sqlite"
	"github.com/mkarpenko/smig/internal/ui"
)

// migrationState is one built-in migration's standing against the database.
type migrationState struct {
	Name         string   `json:"name"`
	Table        string   `json:"table"`
	TableMissing bool     `json:"table_missing"`
	Pending      []string `json:"pending"`
	Applied      bool     `json:"applied"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and built-in migration state",
	Long: `Show the configured database path and, for each built-in migration,
whether its columns are already present. Read-only; a missing database file
is reported rather than created.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := resolveDatabasePath()

		if _, err := os.Stat(path); err != nil {
			if jsonOutput {
				outputJSON(map[string]interface{}{
					"database":   path,
					"db_exists":  false,
					"migrations": migrations.Names(),
				})
			} else {
				fmt.Printf("Database: %s\n", path)
				fmt.Printf("%s\n", ui.RenderWarn(fmt.Sprintf("%s database file does not exist", ui.IconWarn)))
			}
			os.Exit(1)
		}

		store, err := sqlite.Open(rootCtx, path, sqlite.Options{ReadOnly: true})
		if err != nil {
			fatalError(errorKind(err), "failed to open database: %v", err)
		}
		defer func() { _ = store.Close() }()

		var states []migrationState
		for _, m := range migrations.All() {
			st := migrationState{Name: m.Name, Table: m.Plan.Table, Pending: []string{}}
			exists, err := schema.TableExists(rootCtx, store.DB(), m.Plan.Table)
			if err != nil {
				fatalError(errorKind(err), "%v", err)
			}
			if !exists {
				st.TableMissing = true
				states = append(states, st)
				continue
			}
			names := make([]string, len(m.Plan.Columns))
			for i, c := range m.Plan.Columns {
				names[i] = c.Name
			}
			missing, err := schema.MissingColumns(rootCtx, store.DB(), m.Plan.Table, names)
			if err != nil {
				fatalError(errorKind(err), "%v", err)
			}
			st.Pending = missing
			if missing == nil {
				st.Pending = []string{}
			}
			st.Applied = len(missing) == 0
			states = append(states, st)
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"database":   store.Path(),
				"db_exists":  true,
				"migrations": states,
			})
			return
		}

		fmt.Printf("Database: %s\n", store.Path())
		for _, st := range states {
			switch {
			case st.TableMissing:
				fmt.Printf("%s\n", ui.RenderFail(fmt.Sprintf("%s %s: table %q missing", ui.IconFail, st.Name, st.Table)))
			case st.Applied:
				fmt.Printf("%s\n", ui.RenderPass(fmt.Sprintf("%s %s: applied", ui.IconPass, st.Name)))
			default:
				fmt.Printf("%s\n", ui.RenderWarn(fmt.Sprintf("%s %s: pending (%d column(s) to add)", ui.IconWarn, st.Name, len(st.Pending))))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
