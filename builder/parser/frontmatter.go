package parser

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// PostFrontMatter is the schema of a blog post's front-matter block.
// Title, Date and Excerpt are required by convention; the rest are optional.
type PostFrontMatter struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	UpdatedDate string   `yaml:"updatedDate"`
	Excerpt     string   `yaml:"excerpt"`
	Tags        []string `yaml:"tags"`
	Author      string   `yaml:"author"`
}

// ChapterFrontMatter is the schema of a book chapter's front-matter block.
// Order 0 means absent; callers decide the default.
type ChapterFrontMatter struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Order int    `yaml:"order"`
}

var fmDelimiter = []byte("---")

// SplitFrontMatter separates a leading YAML front-matter block from the
// markdown body and decodes it into out. Files without a front-matter block
// are returned whole, leaving out untouched. A front-matter block that is
// opened but never closed, or that contains invalid YAML, is an authoring
// error and fails the call.
func SplitFrontMatter(src []byte, out any) ([]byte, error) {
	trimmed := bytes.TrimPrefix(src, []byte("\ufeff"))
	if !bytes.HasPrefix(trimmed, fmDelimiter) {
		return src, nil
	}
	rest := trimmed[len(fmDelimiter):]
	if len(rest) > 0 && rest[0] == '\r' {
		rest = rest[1:]
	}
	if len(rest) == 0 || rest[0] != '\n' {
		// "---" starting a thematic break, not front matter
		return src, nil
	}
	rest = rest[1:]

	end := findClosingDelimiter(rest)
	if end < 0 {
		return nil, fmt.Errorf("front matter: missing closing delimiter")
	}

	block := rest[:end]
	if err := yaml.Unmarshal(block, out); err != nil {
		return nil, fmt.Errorf("front matter: %w", err)
	}

	body := rest[end:]
	if idx := bytes.IndexByte(body, '\n'); idx >= 0 {
		body = body[idx+1:]
	} else {
		body = nil
	}
	return body, nil
}

// findClosingDelimiter returns the offset of the line starting the closing
// "---", or -1 when the block is unterminated.
func findClosingDelimiter(b []byte) int {
	offset := 0
	for offset <= len(b) {
		line := b[offset:]
		nl := bytes.IndexByte(line, '\n')
		if nl >= 0 {
			line = line[:nl]
		}
		if isDelimiterLine(line) {
			return offset
		}
		if nl < 0 {
			break
		}
		offset += nl + 1
	}
	return -1
}

func isDelimiterLine(line []byte) bool {
	line = bytes.TrimRight(line, "\r \t")
	return bytes.Equal(line, fmDelimiter)
}
