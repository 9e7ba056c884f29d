package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/nicheknack/lifespeed/internal/frontmatter"
)

// IndexDocument is the file inside an entry directory that holds the
// entry text and its frontmatter.
const IndexDocument = "index.md"

// excerptRunes bounds the excerpt length in the listing payload.
const excerptRunes = 160

// EntryMeta is the listing projection of one journal entry.
type EntryMeta struct {
	Dir     string   `json:"dir"`
	Path    string   `json:"path"`
	MtimeMs int64    `json:"mtime_ms"`
	Title   string   `json:"title"`
	Date    string   `json:"date"`
	Tags    []string `json:"tags"`
	Excerpt string   `json:"excerpt"`
}

// ListEntries scans dir for entry directories and returns their
// metadata, newest first. An entry is a subdirectory containing an
// index document; subdirectories without one are skipped, as is any
// entry whose document cannot be read. The result is recomputed from
// disk on every call.
func ListEntries(dir string) ([]EntryMeta, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("journal: read entries dir: %w", err)
	}

	out := make([]EntryMeta, 0, len(dirents))
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		indexPath := filepath.Join(dir, d.Name(), IndexDocument)
		info, err := os.Stat(indexPath)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(indexPath)
		if err != nil {
			continue
		}

		meta, body := frontmatter.Parse(data)
		title := meta.Title
		if title == "" {
			title = d.Name()
		}
		tags := meta.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, EntryMeta{
			Dir:     d.Name(),
			Path:    indexPath,
			MtimeMs: info.ModTime().UnixMilli(),
			Title:   title,
			Date:    meta.Date,
			Tags:    tags,
			Excerpt: frontmatter.Excerpt(body, excerptRunes),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MtimeMs > out[j].MtimeMs
	})
	return out, nil
}
