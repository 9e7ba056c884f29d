// Package frontmatter extracts the leading metadata block from journal
// entry documents.
//
// The block is a sequence of key: value lines between two "---" marker
// lines at the top of the file. Parsing is a single linear scan: lines
// that do not look like key: value pairs are skipped, and a missing or
// unterminated block means the whole input is body.
package frontmatter

import (
	"strings"
	"unicode/utf8"
)

const delim = "---"

// Meta holds the recognized frontmatter fields of an entry.
type Meta struct {
	Title string
	Date  string
	Tags  []string
}

// Parse splits data into frontmatter metadata and body. It never fails;
// malformed lines inside the block are skipped.
func Parse(data []byte) (Meta, string) {
	var meta Meta

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	// The opening marker must be the first non-blank line.
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start >= len(lines) || strings.TrimSpace(lines[start]) != delim {
		return meta, string(data)
	}

	end := -1
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == delim {
			end = i
			break
		}
	}
	if end < 0 {
		// Unterminated block: treat everything as body.
		return meta, string(data)
	}

	var lastKey string
	for _, line := range lines[start+1 : end] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Continuation item of a block-style tags list.
		if strings.HasPrefix(trimmed, "- ") {
			if lastKey == "tags" {
				if tag := unquote(strings.TrimSpace(trimmed[2:])); tag != "" {
					meta.Tags = append(meta.Tags, tag)
				}
			}
			continue
		}

		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			// Not a key: value line; skip and continue.
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		lastKey = key

		switch key {
		case "title":
			meta.Title = unquote(value)
		case "date":
			meta.Date = unquote(value)
		case "tags":
			meta.Tags = append(meta.Tags, splitTags(value)...)
		}
	}

	body := strings.Join(lines[end+1:], "\n")
	return meta, strings.TrimLeft(body, "\n")
}

// splitTags parses an inline tag value: either a bracketed list
// ("[a, b]"), a comma-separated scalar, or a single tag. Order is
// preserved and empty items dropped. An empty value means a block-style
// list follows on the next lines.
func splitTags(value string) []string {
	if value == "" {
		return nil
	}
	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		value = value[1 : len(value)-1]
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if tag := unquote(strings.TrimSpace(part)); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// unquote strips one layer of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Excerpt returns the first prose of body, skipping blank lines and
// Markdown headings, truncated to max runes.
func Excerpt(body string, max int) string {
	var b strings.Builder
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(trimmed)
		if utf8.RuneCountInString(b.String()) >= max {
			break
		}
	}
	s := b.String()
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
