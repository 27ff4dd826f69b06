package report

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/crewdeck/crewdeck/internal/api"
)

// BuildCompliance renders a compliance payload as a markdown document. The
// backend computes every number; this only lays them out.
func BuildCompliance(rep *api.ComplianceReport) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Compliance Report\n\n")
	if rep == nil {
		buf.WriteString("No compliance data available.\n")
		return buf.Bytes()
	}
	if rep.GeneratedAt != "" {
		fmt.Fprintf(&buf, "Generated by backend at %s.\n\n", rep.GeneratedAt)
	}
	writeSection(&buf, "Summary", rep.Summary)
	writeSection(&buf, "Human-in-the-Loop", rep.HumanInLoop)
	writeSection(&buf, "AI Oversight", rep.AIOversight)
	writeSection(&buf, "Decision Distribution", rep.DecisionDistribution)
	writeSection(&buf, "Data Protection", rep.DataProtection)
	return buf.Bytes()
}

func writeSection(buf *bytes.Buffer, title string, values map[string]any) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(buf, "## %s\n\n", title)
	writeValues(buf, values, 0)
	buf.WriteString("\n")
}

// writeValues emits one bullet per key, recursing into nested maps with
// deeper indentation. Keys are sorted so the output is stable.
func writeValues(buf *bytes.Buffer, values map[string]any, depth int) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	indent := strings.Repeat("  ", depth)
	for _, key := range keys {
		switch v := values[key].(type) {
		case map[string]any:
			fmt.Fprintf(buf, "%s- **%s**:\n", indent, labelize(key))
			writeValues(buf, v, depth+1)
		default:
			fmt.Fprintf(buf, "%s- **%s**: %s\n", indent, labelize(key), formatValue(v))
		}
	}
}

// labelize turns snake_case keys into readable labels.
func labelize(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Render renders markdown for the terminal. Style follows the terminal's
// detected background; wrap keeps lines within width.
func Render(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("report: init renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("report: render: %w", err)
	}
	return out, nil
}
