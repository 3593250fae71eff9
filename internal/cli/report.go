package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/seuros/vidpulse/internal/format"
	"github.com/seuros/vidpulse/internal/panels"
	"github.com/seuros/vidpulse/internal/reportapi"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"

	noReportText = "No report"
)

var (
	reportFields []string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report <panel> [--field key=value ...] [--format text|json|yaml]",
	Short: "Run one report panel against the backend",
	Long: `Run one dashboard panel headless and print its report.

Panels: ` + strings.Join(panels.Names(), ", ") + `

Supported formats:
  text  - Report text with markup stripped (default on a terminal)
  json  - Raw backend payload (default when piped)
  yaml  - Raw backend payload as YAML

Examples:
  vidpulse report global --field platform=TikTok --field year_month=2025-03
  vidpulse report dominance --field country_code=US --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		outFormat := resolveFormat(reportFormat, term.IsTerminal(int(os.Stdout.Fd())))
		return runReport(cmd.Context(), newReportClient(cfg), args[0], reportFields, outFormat, cmd.OutOrStdout())
	},
}

// resolveFormat picks the output format; an empty flag means text on a
// terminal and JSON otherwise.
func resolveFormat(flag string, tty bool) string {
	if flag != "" {
		return strings.ToLower(flag)
	}
	if tty {
		return formatText
	}
	return formatJSON
}

// parseFields turns key=value pairs into panel fields.
func parseFields(pairs []string) (panels.Fields, error) {
	fields := make(panels.Fields, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", pair)
		}
		fields[key] = value
	}
	return fields, nil
}

func runReport(ctx context.Context, api reportapi.API, panel string, pairs []string, outFormat string, w io.Writer) error {
	switch outFormat {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unsupported format %q (use text, json or yaml)", outFormat)
	}

	fields, err := parseFields(pairs)
	if err != nil {
		return err
	}
	if names, ok := panels.FieldNames(panel); ok {
		for key := range fields {
			if !contains(names, key) {
				return fmt.Errorf("panel %s has no field %q (fields: %s)", panel, key, strings.Join(names, ", "))
			}
		}
	}

	report, err := panels.Fetch(ctx, api, panel, fields)
	if err != nil {
		return err
	}

	switch outFormat {
	case formatJSON:
		err = writeJSON(w, report)
	case formatYAML:
		err = writeYAML(w, report)
	default:
		if report.BackendError() == "" {
			_, err = fmt.Fprintln(w, format.PlainText(report.Markup(noReportText)))
		}
	}
	if err != nil {
		return err
	}

	if msg := report.BackendError(); msg != "" {
		return fmt.Errorf("backend error: %s", msg)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML re-encodes v's JSON form so the keys match the backend payload.
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return err
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles JSON input leaves on every
// node. The encoder still quotes strings that would read as another type.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func init() {
	reportCmd.Flags().StringArrayVar(&reportFields, "field", nil, "Panel field as key=value (repeatable)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "", "Output format (text, json, yaml)")
	RootCmd.AddCommand(reportCmd)
}
