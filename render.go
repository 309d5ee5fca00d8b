package main

import (
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// OutputChannel selects how a report is rendered and where it goes.
type OutputChannel string

const (
	OutputConsole OutputChannel = "console"
	OutputBrowser OutputChannel = "browser"
	OutputHTML    OutputChannel = "html"
	OutputText    OutputChannel = "text"
	OutputEmail   OutputChannel = "email"
	OutputSlack   OutputChannel = "slack"
)

// RenderedOutput is the channel-agnostic result of rendering: content plus a
// suggested filename for file-backed channels (empty for console and slack).
// Side effects belong to the sink, not the renderer.
type RenderedOutput struct {
	Channel  OutputChannel
	Content  string
	Filename string
}

const reportBaseName = "TFS-Daily-Summary"

const aiFailurePrefix = "Claude Analysis Failure Reason: "

var priorityStyles = map[PriorityLevel]lipgloss.Style{
	PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
}

// Render produces the report for one channel. Items must already be sorted
// descending by traditional score.
func Render(items []AnalyzedItem, channel OutputChannel, ctx ReportContext) (RenderedOutput, error) {
	switch channel {
	case OutputConsole:
		return RenderedOutput{Channel: channel, Content: buildConsoleReport(items, ctx)}, nil
	case OutputHTML, OutputBrowser:
		return RenderedOutput{Channel: channel, Content: buildHTMLReport(items, ctx), Filename: reportBaseName + ".html"}, nil
	case OutputText:
		return RenderedOutput{Channel: channel, Content: buildTextReport(items, ctx), Filename: reportBaseName + ".txt"}, nil
	case OutputEmail:
		subject := fmt.Sprintf("TFS Ticket Analysis - Last %d days", ctx.Days)
		content := buildEML(subject, buildTextReport(items, ctx), buildHTMLReport(items, ctx))
		return RenderedOutput{Channel: channel, Content: content, Filename: reportBaseName + ".eml"}, nil
	case OutputSlack:
		return RenderedOutput{Channel: channel, Content: buildSlackReport(items, ctx)}, nil
	default:
		return RenderedOutput{}, fmt.Errorf("unknown output channel %q", channel)
	}
}

func buildConsoleReport(items []AnalyzedItem, ctx ReportContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TFS Ticket Analysis - Last %d days\n", ctx.Days)
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Generated: %s\n", ctx.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total items: %d\n", len(items))
	if ctx.AIFailure != "" {
		b.WriteString(aiFailurePrefix + ctx.AIFailure + "\n")
		b.WriteString("Falling back to traditional priority analysis.\n")
	}
	b.WriteString("\n")

	for _, it := range items {
		level := ctx.DisplayLevel(it)
		badge := "[" + string(level) + "]"
		if style, ok := priorityStyles[level]; ok {
			badge = style.Render(badge)
		}
		fmt.Fprintf(&b, "%s %s\n", badge, it.Item.Title)
		fmt.Fprintf(&b, "   Type: %s\n", it.Item.Type)
		fmt.Fprintf(&b, "   State: %s\n", it.Item.State)
		fmt.Fprintf(&b, "   ID: %d\n", it.Item.ID)
		fmt.Fprintf(&b, "   Score: %d\n", it.Score)
		fmt.Fprintf(&b, "   Action: %s\n", it.Analysis.Action)
		fmt.Fprintf(&b, "   Impact: %s\n", it.Analysis.Impact)
		if note := provenanceNote(ctx, it); note != "" {
			fmt.Fprintf(&b, "   Priority source: %s\n", note)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func buildTextReport(items []AnalyzedItem, ctx ReportContext) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("TFS Ticket Analysis - Last %d days", ctx.Days))
	lines = append(lines, strings.Repeat("=", 50))
	lines = append(lines, fmt.Sprintf("Generated: %s", ctx.GeneratedAt.Format("2006-01-02 15:04:05")))
	lines = append(lines, fmt.Sprintf("Total items: %d", len(items)))
	if ctx.AIFailure != "" {
		lines = append(lines, aiFailurePrefix+ctx.AIFailure)
		lines = append(lines, "Falling back to traditional priority analysis.")
	}
	lines = append(lines, "")

	for _, it := range items {
		lines = append(lines, fmt.Sprintf("[%s] %s", ctx.DisplayLevel(it), it.Item.Title))
		lines = append(lines, fmt.Sprintf("   Type: %s", it.Item.Type))
		lines = append(lines, fmt.Sprintf("   State: %s", it.Item.State))
		lines = append(lines, fmt.Sprintf("   ID: %d", it.Item.ID))
		lines = append(lines, fmt.Sprintf("   Score: %d", it.Score))
		lines = append(lines, fmt.Sprintf("   Action: %s", it.Analysis.Action))
		lines = append(lines, fmt.Sprintf("   Impact: %s", it.Analysis.Impact))
		if note := provenanceNote(ctx, it); note != "" {
			lines = append(lines, fmt.Sprintf("   Priority source: %s", note))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func buildHTMLReport(items []AnalyzedItem, ctx ReportContext) string {
	counts := map[PriorityLevel]int{}
	for _, it := range items {
		counts[ctx.DisplayLevel(it)]++
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
    <title>TFS Ticket Analysis - Last ` + fmt.Sprintf("%d", ctx.Days) + ` days</title>
    <meta charset="utf-8">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Arial, sans-serif; margin: 20px; }
        .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; border-radius: 8px; }
        .summary { background: #f8f9fa; padding: 15px; border-radius: 6px; margin: 20px 0; }
        .notice { background: #fff3cd; border: 1px solid #ffeeba; padding: 10px; border-radius: 6px; margin: 20px 0; }
        .work-item { margin: 15px 0; padding: 15px; border-left: 4px solid #ddd; background: white; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .high { border-left-color: #dc3545; }
        .medium { border-left-color: #ffc107; }
        .low { border-left-color: #28a745; }
        .priority { font-weight: bold; padding: 4px 8px; border-radius: 4px; color: white; display: inline-block; }
        .priority.high { background: #dc3545; }
        .priority.medium { background: #ffc107; color: #212529; }
        .priority.low { background: #28a745; }
        .provenance { font-size: 12px; color: #666; margin-left: 8px; }
        .title { font-size: 18px; font-weight: bold; margin: 10px 0; }
        .details { color: #666; font-size: 14px; }
        .analysis { background: #f8f9fa; padding: 10px; border-radius: 4px; margin: 10px 0; }
    </style>
</head>
<body>
`)
	b.WriteString(`    <div class="header">
        <h1>TFS Ticket Analysis</h1>
`)
	fmt.Fprintf(&b, "        <p>Last %d days &bull; Generated: %s</p>\n", ctx.Days, ctx.GeneratedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("    </div>\n")

	b.WriteString(`    <div class="summary">
        <h2>Summary</h2>
`)
	fmt.Fprintf(&b, "        <p><strong>Total Items:</strong> %d</p>\n", len(items))
	fmt.Fprintf(&b, "        <p><strong>High Priority:</strong> %d</p>\n", counts[PriorityHigh])
	fmt.Fprintf(&b, "        <p><strong>Medium Priority:</strong> %d</p>\n", counts[PriorityMedium])
	fmt.Fprintf(&b, "        <p><strong>Low Priority:</strong> %d</p>\n", counts[PriorityLow])
	b.WriteString("    </div>\n")

	if ctx.AIFailure != "" {
		fmt.Fprintf(&b, "    <div class=\"notice\"><strong>%s</strong>%s<br>Falling back to traditional priority analysis.</div>\n",
			aiFailurePrefix, html.EscapeString(ctx.AIFailure))
	}

	for _, it := range items {
		level := ctx.DisplayLevel(it)
		levelClass := strings.ToLower(string(level))
		fmt.Fprintf(&b, "    <div class=\"work-item %s\">\n", levelClass)
		fmt.Fprintf(&b, "        <span class=\"priority %s\">%s</span>", levelClass, level)
		if note := provenanceNote(ctx, it); note != "" {
			fmt.Fprintf(&b, "<span class=\"provenance\">%s</span>", html.EscapeString(note))
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "        <div class=\"title\">%s</div>\n", html.EscapeString(it.Item.Title))
		fmt.Fprintf(&b, "        <div class=\"details\"><strong>Type:</strong> %s | <strong>State:</strong> %s | <strong>ID:</strong> %d | <strong>Score:</strong> %d</div>\n",
			html.EscapeString(it.Item.Type), html.EscapeString(it.Item.State), it.Item.ID, it.Score)
		fmt.Fprintf(&b, "        <div class=\"analysis\"><strong>Action:</strong> %s<br><strong>Impact:</strong> %s</div>\n",
			html.EscapeString(it.Analysis.Action), html.EscapeString(it.Analysis.Impact))
		b.WriteString("    </div>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func buildSlackReport(items []AnalyzedItem, ctx ReportContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*TFS Ticket Analysis - Last %d days* (%d items)\n", ctx.Days, len(items))
	if ctx.AIFailure != "" {
		fmt.Fprintf(&b, "_%s%s_\n", aiFailurePrefix, ctx.AIFailure)
	}
	b.WriteString("\n")
	for _, it := range items {
		fmt.Fprintf(&b, "*[%s]* %s\n", ctx.DisplayLevel(it), it.Item.Title)
		fmt.Fprintf(&b, "> Type: %s | State: %s | ID: %d | Score: %d\n", it.Item.Type, it.Item.State, it.Item.ID, it.Score)
		fmt.Fprintf(&b, "> Action: %s\n", it.Analysis.Action)
		fmt.Fprintf(&b, "> Impact: %s\n", it.Analysis.Impact)
		if note := provenanceNote(ctx, it); note != "" {
			fmt.Fprintf(&b, "> Priority source: %s\n", note)
		}
	}
	return b.String()
}

// provenanceNote annotates where the displayed level came from. Only emitted
// when reconciliation ran; the traditional score stays visible as the
// fallback reference either way.
func provenanceNote(ctx ReportContext, it AnalyzedItem) string {
	rec, ok := ctx.Reconciled[it.Item.ID]
	if !ok {
		return ""
	}
	if rec.Provenance == ProvenanceAI {
		return fmt.Sprintf("AI assessed (traditional: %s, score %d)", rec.TraditionalLevel, rec.TraditionalScore)
	}
	return fmt.Sprintf("traditional scoring (score %d)", rec.TraditionalScore)
}

// buildEML assembles a multipart/alternative email draft carrying the plain
// text and HTML renderings. Transport is up to the caller's mail client.
func buildEML(subject, plainBody, htmlBody string) string {
	const boundary = "tfs-analyzer-alt"
	headers := []string{
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", boundary),
		fmt.Sprintf("Subject: %s", subject),
	}
	plain := normalizeCRLF(plainBody)

	var out strings.Builder
	out.WriteString(strings.Join(headers, "\r\n"))
	out.WriteString("\r\n\r\n")
	out.WriteString("--" + boundary + "\r\n")
	out.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	out.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	out.WriteString(plain)
	if !strings.HasSuffix(plain, "\r\n") {
		out.WriteString("\r\n")
	}
	out.WriteString("\r\n--" + boundary + "\r\n")
	out.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	out.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	out.WriteString(htmlBody)
	out.WriteString("\r\n--" + boundary + "--\r\n")
	return out.String()
}

func normalizeCRLF(s string) string {
	normalized := strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(normalized, "\n", "\r\n")
}
