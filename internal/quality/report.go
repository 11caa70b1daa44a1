package quality

import (
	"fmt"
	"io"
	"strings"
)

const (
	reportWidth      = 72
	maxSampleIssues  = 5
	maxMessageLength = reportWidth - 8
)

// WriteConsoleReport renders a fixed-width summary of audit to w: a status
// banner, completion ratios and up to five sample warnings. path is the
// location the audit was saved to and may be empty.
func WriteConsoleReport(w io.Writer, audit PipelineQualityAudit, path string) error {
	rule := strings.Repeat("=", reportWidth)
	thin := strings.Repeat("-", reportWidth)
	sum := audit.Summary

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, center(fmt.Sprintf("PIPELINE QUALITY AUDIT  %s", audit.RunID), reportWidth))
	fmt.Fprintln(&b, center(fmt.Sprintf("STATUS: %s", audit.Status), reportWidth))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%-28s %s\n", "Dimensions complete:", ratio(sum.CompleteDimensions, sum.TotalDimensions))
	fmt.Fprintf(&b, "%-28s %d partial, %d skipped\n", "Dimensions degraded:", sum.PartialDimensions, sum.SkippedDimensions)
	fmt.Fprintf(&b, "%-28s %s\n", "Questions found:", ratio(sum.QuestionsFound, sum.QuestionsExpected))
	fmt.Fprintf(&b, "%-28s %s\n", "Sub-indicators generated:", ratio(sum.SubIndicatorsGenerated, sum.SubIndicatorsExpected))
	fmt.Fprintf(&b, "%-28s %d critical, %d warning, %d info\n", "Issues:", sum.CriticalIssueCount, sum.WarningCount, sum.InfoCount)

	var samples []ValidationIssue
	for _, issue := range audit.Issues {
		if issue.Severity == SeverityCritical || issue.Severity == SeverityWarning {
			samples = append(samples, issue)
		}
		if len(samples) == maxSampleIssues {
			break
		}
	}
	if len(samples) > 0 {
		fmt.Fprintln(&b, thin)
		fmt.Fprintln(&b, "Sample issues:")
		for _, issue := range samples {
			fmt.Fprintf(&b, "  [%-8s] %s\n", issue.Severity, truncate(issue.Message, maxMessageLength))
		}
	}

	if len(audit.Recommendations) > 0 {
		fmt.Fprintln(&b, thin)
		fmt.Fprintln(&b, "Recommendations:")
		for i, rec := range audit.Recommendations {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, rec)
		}
	}

	if path != "" {
		fmt.Fprintln(&b, thin)
		fmt.Fprintf(&b, "Audit saved to: %s\n", path)
	}
	fmt.Fprintln(&b, rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func ratio(found, expected int) string {
	if expected == 0 {
		return fmt.Sprintf("%d/%d (n/a)", found, expected)
	}
	return fmt.Sprintf("%d/%d (%.1f%%)", found, expected, 100*float64(found)/float64(expected))
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
