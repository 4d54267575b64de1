// Package cli formats engine output for the memefeed command line.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hyperjump/memefeed/internal/models"
	"github.com/hyperjump/memefeed/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const maxPathWidth = 60

// ParseOutputFormat validates an --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteRecommendations writes a ranked list to w in the given format.
func WriteRecommendations(w io.Writer, resp *models.RecommendResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	if len(resp.Recommendations) == 0 {
		fmt.Fprintln(w, "No recommendations.")
		return nil
	}
	fmt.Fprintf(w, "%-5s %-6s %-8s %s\n", "RANK", "INDEX", "SCORE", "PATH")
	for i, r := range resp.Recommendations {
		fmt.Fprintf(w, "%-5d %-6d %-8.4f %s\n", i+1, r.Index, r.Score, utils.TruncateLeft(r.Path, maxPathWidth))
	}
	return nil
}

// WriteStatus writes an engine status snapshot to w in the given format.
func WriteStatus(w io.Writer, st *models.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "Items:      %d\n", st.ItemCount)
	fmt.Fprintf(w, "Dimension:  %d\n", st.Dimension)
	fmt.Fprintf(w, "Feedback:   %d (%d liked, %d skipped)\n", st.FeedbackCount, st.LikedCount, st.SkippedCount)
	if st.DataSource != "" {
		fmt.Fprintf(w, "Source:     %s\n", st.DataSource)
	}
	fmt.Fprintf(w, "Search:     %s\n", enabledText(st.SearchEnabled))
	if st.DiskUsageBytes != nil {
		fmt.Fprintf(w, "Disk usage: %s\n", FormatBytes(*st.DiskUsageBytes))
	}
	return nil
}

// WriteFeedbackResult writes the outcome of a like or skip.
func WriteFeedbackResult(w io.Writer, res *models.FeedbackResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "Recorded %s for item %d (%d liked, %d total)\n", res.Action, res.Index, res.LikedCount, res.AcceptedCount)
	return nil
}

// WriteSearchResults writes identifier search hits to w.
func WriteSearchResults(w io.Writer, resp *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "Found %d items for %q\n", resp.Total, resp.Query)
	for _, h := range resp.Hits {
		fmt.Fprintf(w, "%-6d %-8.4f %s\n", h.Index, h.Score, utils.DisplayName(h.Path))
	}
	return nil
}

func enabledText(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
