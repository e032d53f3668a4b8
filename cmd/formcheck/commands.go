package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"demandas/internal/form/models"
	"demandas/internal/form/retification"
	"demandas/internal/form/sections"
	"demandas/internal/form/validation"
	"demandas/internal/platform/logger"
)

const dateLayout = "02/01/2006"

// errValidationFailed makes the process exit non-zero after the failure line
// has been printed.
var errValidationFailed = errors.New("validation failed")

// snapshot is the file format validate reads.
type snapshot struct {
	Form               models.Form           `json:"form"`
	Retifications      []retification.Record `json:"retifications"`
	AddressingRequired bool                  `json:"addressing_required"`
}

type options struct {
	rulesPath string
	logLevel  string
	noColor   bool
}

func rootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "formcheck",
		Short: "Validate document form snapshots offline",
		Long: `Validate document form snapshots offline with the same rules the
server applies on submit.

Examples:
  formcheck validate snapshot.json
  formcheck validate --rules rules.yaml --today 10/03/2026 snapshot.json
  formcheck rules --rules rules.yaml
`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	cmd.PersistentFlags().StringVar(&opts.rulesPath, "rules", "", "Rule table YAML file (built-in table when empty)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(validateCmd(opts), rulesCmd(opts), versionCmd())
	return cmd
}

func validateCmd(opts *options) *cobra.Command {
	var today string
	cmd := &cobra.Command{
		Use:   "validate <snapshot.json>",
		Short: "Validate one form snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewWithWriter(cmd.ErrOrStderr(), opts.logLevel)

			table, err := loadRules(opts.rulesPath, log)
			if err != nil {
				return err
			}
			snap, err := readSnapshot(args[0])
			if err != nil {
				return err
			}
			day := time.Now()
			if today != "" {
				day, err = time.Parse(dateLayout, today)
				if err != nil {
					return fmt.Errorf("--today must be dd/mm/yyyy: %w", err)
				}
			}

			rule := sections.NewResolver(table).Rule(snap.Form.DocumentType, snap.Form.Subject)
			log.Debug("resolved section rule",
				"document_type", snap.Form.DocumentType,
				"subject", snap.Form.Subject,
				"rule", rule,
			)
			result := validation.New().Validate(validation.Input{
				Form:               snap.Form,
				Rule:               rule,
				Chain:              snap.Retifications,
				AddressingRequired: snap.AddressingRequired,
				Today:              day,
			})
			return printResult(cmd.OutOrStdout(), args[0], result)
		},
	}
	cmd.Flags().StringVar(&today, "today", "", "Reference date for chain checks (dd/mm/yyyy, defaults to now)")
	return cmd
}

func rulesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective section rule table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.NewWithWriter(cmd.ErrOrStderr(), opts.logLevel)
			table, err := loadRules(opts.rulesPath, log)
			if err != nil {
				return err
			}
			return printRules(cmd.OutOrStdout(), table)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the formcheck version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "formcheck %s\n", version)
		},
	}
}

func loadRules(path string, log *slog.Logger) (*sections.RuleTable, error) {
	if path == "" {
		log.Debug("using built-in rule table")
		return sections.DefaultRuleTable(), nil
	}
	table, err := sections.LoadRuleTableFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	log.Info("rule table loaded", "path", path, "entries", len(table.Keys()))
	return table, nil
}

func readSnapshot(path string) (*snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}

func printResult(w io.Writer, name string, result validation.Result) error {
	if result.OK {
		color.New(color.FgGreen, color.Bold).Fprint(w, "PASS")
		fmt.Fprintf(w, " %s\n", name)
		return nil
	}
	severity := color.New(color.FgYellow)
	if result.Severity == models.SeverityError {
		severity = color.New(color.FgRed)
	}
	color.New(color.FgRed, color.Bold).Fprint(w, "FAIL")
	fmt.Fprintf(w, " %s ", name)
	severity.Fprintf(w, "[%s]", result.Severity)
	fmt.Fprintf(w, " %s\n", result.Message)
	return errValidationFailed
}

func printRules(w io.Writer, table *sections.RuleTable) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintln(tw, "CLASSIFICATION\tSECTION 2\tSECTION 3\tSECTION 4")
	for _, key := range table.Keys() {
		rule, _ := table.Lookup(key)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", key,
			visibility(rule.Section2), visibility(rule.Section3), visibility(rule.Section4))
	}
	return tw.Flush()
}

func visibility(v sections.Visibility) string {
	switch {
	case v.Visible && v.Required:
		return "required"
	case v.Visible:
		return "optional"
	default:
		return "hidden"
	}
}
