// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// htmlShell wraps the converted report body with the mail styling. Kept
// deliberately simple: email clients ignore most CSS anyway.
const htmlShell = `<html>
<head>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
h1 { color: #2c3e50; border-bottom: 2px solid #3498db; padding-bottom: 10px; }
h2 { color: #34495e; margin-top: 30px; }
blockquote { background-color: #f8f9fa; padding: 10px 15px; border-left: 3px solid #3498db; margin: 0 0 20px 0; }
li { margin-bottom: 5px; line-height: 1.4; }
a { color: #2c3e50; }
hr { border: none; border-top: 1px solid #ecf0f1; margin-top: 30px; }
</style>
</head>
<body>
%s</body>
</html>
`

// RenderDigest builds the ranked digest as Markdown and converts it to
// the HTML email body.
func RenderDigest(batch types.ResultBatch, qctx types.QueryContext, from, to time.Time) (string, error) {
	var md strings.Builder

	md.WriteString("# PaperFetch Results\n\n")
	writeRunInfo(&md, qctx.Query, from, to, len(batch))

	for _, rp := range Rank(batch) {
		writePaper(&md, rp)
	}

	md.WriteString("---\n\n")
	fmt.Fprintf(&md, "Generated by paperfetch on %s\n", time.Now().Format("2006-01-02 15:04:05"))
	if qctx.Interests != "" {
		fmt.Fprintf(&md, "\n**Researcher interests used for rating:** %s\n", qctx.Interests)
	}

	return toHTML(md.String())
}

// RenderSkipped builds the titles-only variant sent when the batch is too
// large for model processing. The enrichment engine is never invoked for
// these runs.
func RenderSkipped(papers map[string]types.PaperRecord, qctx types.QueryContext, from, to time.Time, maxPapers int) (string, error) {
	var md strings.Builder

	md.WriteString("# PaperFetch Results - LLM Processing Skipped\n\n")
	fmt.Fprintf(&md, "> **LLM processing skipped.** Found %d papers, which exceeds the configured limit of %d. Narrow the search window or raise `enrichment.max_papers`.\n\n",
		len(papers), maxPapers)
	writeRunInfo(&md, qctx.Query, from, to, len(papers))

	md.WriteString("## Found Papers (Titles Only)\n\n")
	titles := make([]string, 0, len(papers))
	for title := range papers {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	for _, title := range titles {
		md.WriteString("- " + linkTitle(title, papers[title].URL) + "\n")
	}

	md.WriteString("\n---\n\n")
	fmt.Fprintf(&md, "Generated by paperfetch on %s\n", time.Now().Format("2006-01-02 15:04:05"))

	return toHTML(md.String())
}

func writeRunInfo(md *strings.Builder, query string, from, to time.Time, count int) {
	fmt.Fprintf(md, "> **Search Query:** %s  \n", query)
	fmt.Fprintf(md, "> **Date Range:** %s to %s  \n", from.Format("2006-01-02"), to.Format("2006-01-02"))
	fmt.Fprintf(md, "> **Papers Found:** %d\n\n", count)
}

func writePaper(md *strings.Builder, rp RankedPaper) {
	fmt.Fprintf(md, "## %s\n\n", linkTitle(rp.Title, rp.Result.URL))

	if rp.Result.Rating.OK() {
		fmt.Fprintf(md, "**Interest Rating:** %d/10\n\n", rp.Result.Rating.Score)
	} else {
		fmt.Fprintf(md, "**Interest Rating:** %s\n\n", rp.Result.Rating.FailureReason)
	}

	if rp.Result.Summary.OK() {
		md.WriteString("**Key Points:**\n\n")
		for _, bullet := range rp.Result.Summary.Bullets {
			md.WriteString("- " + bullet + "\n")
		}
		md.WriteString("\n")
	} else {
		fmt.Fprintf(md, "Summary not available: %s\n\n", rp.Result.Summary.FailureReason)
	}
}

func linkTitle(title, url string) string {
	if url == "" {
		return title
	}
	return fmt.Sprintf("[%s](%s)", title, url)
}

func toHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("converting digest markdown: %w", err)
	}
	return fmt.Sprintf(htmlShell, buf.String()), nil
}
