package lookup

import "strings"

// RenderResults flattens a result list into one text blob for contact
// extraction, keeping URL, title and snippet of every hit.
func RenderResults(results []Result) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("url: ")
		b.WriteString(r.URL)
		b.WriteString("\ntitle: ")
		b.WriteString(r.Title)
		b.WriteString("\ncontent: ")
		b.WriteString(r.Content)
	}
	return b.String()
}
