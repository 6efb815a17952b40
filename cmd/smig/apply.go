package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkarpenko/smig/internal/config"
	"github.com/mkarpenko/smig/internal/debug"
	"github.com/mkarpenko/smig/internal/migrations"
	"github.com/mkarpenko/smig/internal/schema"
	"github.com/mkarpenko/smig/internal/script"
	"github.com/mkarpenko/smig/internal/storage/sqlite"
	"github.com/mkarpenko/smig/internal/ui"
)

var applyCmd = &cobra.Command{
	Use:   "apply [script.sql]",
	Short: "Apply column additions to the database",
	Long: `Apply column additions from a migration script, or the built-in
migrations with --builtin.

Scripts contain semicolon-terminated ALTER TABLE ... ADD COLUMN statements;
-- comment lines are ignored. Columns that already exist are skipped, so
re-applying a script is always safe.

Statements apply in order without a wrapping transaction. If one fails,
earlier additions stay in place and the failure is reported; re-running
after fixing the cause picks up where the run stopped.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		autoYes, _ := cmd.Flags().GetBool("yes")
		builtin, _ := cmd.Flags().GetBool("builtin")

		plans := resolvePlans(args, builtin)
		path := resolveDatabasePath()

		if dryRun {
			runDryRun(path, plans)
			return
		}

		if !autoYes && !jsonOutput {
			total := 0
			for _, p := range plans {
				total += len(p.Columns)
			}
			fmt.Printf("Apply %d column addition(s) to %s? [y/N] ", total, path)
			var response string
			_, _ = fmt.Scanln(&response)
			if r := strings.ToLower(response); r != "y" && r != "yes" {
				fmt.Println("Canceled")
				return
			}
		}

		runApply(path, plans)
	},
}

// resolvePlans builds the list of plans for this invocation: a script path
// (argument or configured default), or the built-in registry with --builtin.
func resolvePlans(args []string, builtin bool) []schema.Plan {
	if builtin {
		if len(args) > 0 {
			fatalError("conflicting_arguments", "--builtin cannot be combined with a script path")
		}
		var plans []schema.Plan
		for _, m := range migrations.All() {
			plans = append(plans, m.Plan)
		}
		return plans
	}

	scriptPath := config.Script()
	if len(args) > 0 {
		scriptPath = args[0]
	}
	if scriptPath == "" {
		fatalErrorWithHint("no_script",
			"no migration script given",
			"pass a script path, set script: in smig.yaml, or use --builtin")
	}

	plans, err := script.ParseFile(scriptPath)
	if err != nil {
		fatalError("script_parse_failed", "%v", err)
	}
	debug.Logf("parsed %d plan(s) from %s\n", len(plans), scriptPath)
	return plans
}

// runDryRun reports what apply would do without changing anything.
// The database is opened read-only so a dry run can never modify the file.
func runDryRun(path string, plans []schema.Plan) {
	store, err := sqlite.Open(rootCtx, path, sqlite.Options{ReadOnly: true})
	if err != nil {
		fatalError(errorKind(err), "failed to open database: %v", err)
	}
	defer func() { _ = store.Close() }()

	type tablePlan struct {
		Table        string   `json:"table"`
		TableMissing bool     `json:"table_missing"`
		WouldAdd     []string `json:"would_add"`
		WouldSkip    []string `json:"would_skip"`
	}
	var report []tablePlan

	for _, p := range plans {
		tp := tablePlan{Table: p.Table, WouldAdd: []string{}, WouldSkip: []string{}}
		exists, err := schema.TableExists(rootCtx, store.DB(), p.Table)
		if err != nil {
			fatalError(errorKind(err), "%v", err)
		}
		if !exists {
			tp.TableMissing = true
			report = append(report, tp)
			continue
		}
		for _, col := range p.Columns {
			present, err := schema.ColumnExists(rootCtx, store.DB(), p.Table, col.Name)
			if err != nil {
				fatalError(errorKind(err), "%v", err)
			}
			if present {
				tp.WouldSkip = append(tp.WouldSkip, col.Name)
			} else {
				tp.WouldAdd = append(tp.WouldAdd, col.Name)
			}
		}
		report = append(report, tp)
	}

	if jsonOutput {
		outputJSON(map[string]interface{}{
			"dry_run":  true,
			"database": store.Path(),
			"plans":    report,
		})
		return
	}

	fmt.Println("Dry run mode - no changes will be made")
	failed := false
	for i, tp := range report {
		if tp.TableMissing {
			fmt.Printf("%s\n", ui.RenderFail(fmt.Sprintf("%s table %q does not exist - apply would fail", ui.IconFail, tp.Table)))
			failed = true
			continue
		}
		for _, name := range tp.WouldAdd {
			col := plans[i].Columns[columnIndex(plans[i], name)]
			fmt.Printf("  Would add: %s\n", col.DDL(tp.Table))
		}
		for _, name := range tp.WouldSkip {
			fmt.Printf("  %s\n", ui.RenderMuted(fmt.Sprintf("%s %s.%s already exists, would skip", ui.IconSkip, tp.Table, name)))
		}
	}
	if failed {
		os.Exit(1)
	}
}

// runApply applies every plan in order against the database at path.
func runApply(path string, plans []schema.Plan) {
	store, err := sqlite.Open(rootCtx, path, sqlite.Options{})
	if err != nil {
		fatalError(errorKind(err), "failed to open database: %v", err)
	}
	defer func() { _ = store.Close() }()

	type tableResult struct {
		Table string `json:"table"`
		schema.Result
	}
	var results []tableResult

	for _, p := range plans {
		res, err := schema.Apply(rootCtx, store.DB(), p)
		results = append(results, tableResult{Table: p.Table, Result: res})
		if err != nil {
			if jsonOutput {
				outputJSON(map[string]interface{}{
					"error":    errorKind(err),
					"message":  err.Error(),
					"database": store.Path(),
					"results":  results,
				})
			} else {
				reportTableResult(p, res)
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				if len(res.Added) > 0 {
					fmt.Fprintf(os.Stderr, "Note: %d column(s) were added before the failure; re-run after fixing the cause\n", len(res.Added))
				}
			}
			os.Exit(1)
		}
		if !jsonOutput {
			reportTableResult(p, res)
		}
	}

	if jsonOutput {
		outputJSON(map[string]interface{}{
			"status":   "success",
			"database": store.Path(),
			"results":  results,
		})
		return
	}
	debug.PrintNormal("Database %s migrated\n", store.Path())
}

// reportTableResult prints per-column outcome lines for one table.
func reportTableResult(p schema.Plan, res schema.Result) {
	if debug.IsQuiet() {
		return
	}
	for _, name := range res.Added {
		col := p.Columns[columnIndex(p, name)]
		fmt.Printf("%s\n", ui.RenderPass(fmt.Sprintf("%s added %s.%s (%s)", ui.IconPass, p.Table, name, col.Type)))
	}
	for _, name := range res.Skipped {
		fmt.Printf("%s\n", ui.RenderMuted(fmt.Sprintf("%s %s.%s already exists, skipped", ui.IconSkip, p.Table, name)))
	}
}

// columnIndex finds a column by name within a plan. The name always comes
// from the plan itself, so a miss is impossible; -1 would panic loudly.
func columnIndex(p schema.Plan, name string) int {
	for i, c := range p.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// errorKind maps a schema error to a stable identifier for JSON output.
func errorKind(err error) string {
	switch {
	case schema.IsTableMissing(err):
		return "table_missing"
	case schema.IsStorageUnavailable(err):
		return "storage_unavailable"
	default:
		return "apply_failed"
	}
}

func init() {
	applyCmd.Flags().Bool("dry-run", false, "Show what would be done without making changes")
	applyCmd.Flags().Bool("yes", false, "Auto-confirm prompts")
	applyCmd.Flags().Bool("builtin", false, "Apply the built-in migrations instead of a script")
	rootCmd.AddCommand(applyCmd)
}
