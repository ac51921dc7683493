package summarizer

import (
	"fmt"
	"strings"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter formats a Summary as a Markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format converts a Summary to Markdown.
func (f *MarkdownFormatter) Format(summary *Summary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", l10n.T("Encode Summary"))
	fmt.Fprintf(&sb, "%s: %s\n\n", l10n.T("Generated"), summary.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&sb, "## %s\n\n", l10n.T("Stream"))
	f.table(&sb, [][2]string{
		{l10n.T("Codec"), summary.Stream.Codec},
		{l10n.T("Resolution"), fmt.Sprintf("%dx%d", summary.Stream.Width, summary.Stream.Height)},
		{l10n.T("Frame Rate"), fmt.Sprintf("%d/%d", summary.Stream.FPSNum, summary.Stream.FPSDen)},
	})

	fmt.Fprintf(&sb, "## %s\n\n", l10n.T("Settings"))
	rate := fmt.Sprintf("%s %.1f", l10n.T("Quality"), summary.Settings.Quality)
	if summary.Settings.Bitrate > 0 {
		rate = fmt.Sprintf("%d bps", summary.Settings.Bitrate)
	}
	passes := l10n.T("Single pass")
	if summary.Settings.TwoPass {
		passes = l10n.T("Two passes")
	}
	preset := summary.Settings.Preset
	if preset == "" {
		preset = l10n.T("Default")
	}
	f.table(&sb, [][2]string{
		{l10n.T("Rate Control"), rate},
		{l10n.T("Preset"), preset},
		{l10n.T("Keyframe Interval"), fmt.Sprintf("%d s", summary.Settings.GOPSeconds)},
		{l10n.T("Passes"), passes},
	})

	fmt.Fprintf(&sb, "## %s\n\n", l10n.T("Results"))
	f.table(&sb, [][2]string{
		{l10n.T("Frames In"), fmt.Sprintf("%d", summary.Reorder.FramesIn)},
		{l10n.T("Packets Out"), fmt.Sprintf("%d", summary.Reorder.PacketsOut)},
		{l10n.T("Frames Dropped"), fmt.Sprintf("%d", summary.Reorder.FramesFailed)},
		{l10n.T("Reorder Delay"), fmt.Sprintf("%d", summary.Reorder.Delay)},
		{l10n.T("Chapters"), fmt.Sprintf("%d", summary.Reorder.ChapterCount)},
	})

	fmt.Fprintf(&sb, "## %s\n\n", l10n.T("Output"))
	f.table(&sb, [][2]string{
		{l10n.T("File"), summary.Output.Path},
		{l10n.T("File Size"), formatBytes(summary.Output.FileSize)},
	})

	return sb.String()
}

func (f *MarkdownFormatter) table(sb *strings.Builder, rows [][2]string) {
	fmt.Fprintf(sb, "| %s | %s |\n", l10n.T("Item"), l10n.T("Value"))
	sb.WriteString("|---|---|\n")
	for _, row := range rows {
		fmt.Fprintf(sb, "| %s | %s |\n", row[0], row[1])
	}
	sb.WriteString("\n")
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

var _ Formatter = (*MarkdownFormatter)(nil)
