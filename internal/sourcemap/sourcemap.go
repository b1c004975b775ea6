// Package sourcemap builds, reads and inlines version 3 source maps.
package sourcemap

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
)

const (
	commentPrefix = "/*# sourceMappingURL="
	dataURIPrefix = "data:application/json;charset=utf8;base64,"
)

// Map is a version 3 source map
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// Mapping ties a generated position to a source position; all values are 0-based
type Mapping struct {
	GenLine int
	GenCol  int
	Source  int
	SrcLine int
	SrcCol  int
}

// Identity maps every line of content onto itself
func Identity(file, content string) *Map {
	lines := strings.Count(content, "\n") + 1

	mappings := make([]Mapping, lines)
	for i := range mappings {
		mappings[i] = Mapping{GenLine: i, SrcLine: i}
	}

	return &Map{
		Version:        3,
		File:           file,
		Sources:        []string{filepath.ToSlash(file)},
		SourcesContent: []string{content},
		Names:          []string{},
		Mappings:       Encode(mappings),
	}
}

// Parse decodes a JSON source map
func Parse(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid source map: %w", err)
	}

	if m.Version != 3 {
		return nil, fmt.Errorf("unsupported source map version %d", m.Version)
	}

	if m.Names == nil {
		m.Names = []string{}
	}

	return &m, nil
}

// JSON encodes the map
func (m *Map) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// RelativeSources rewrites file:// and absolute sources relative to base
func (m *Map) RelativeSources(base string) {
	for i, src := range m.Sources {
		p := src
		if u, err := url.Parse(src); err == nil && u.Scheme == "file" {
			p = filepath.FromSlash(u.Path)
		}

		if !filepath.IsAbs(p) {
			continue
		}

		if rel, err := filepath.Rel(base, p); err == nil {
			m.Sources[i] = filepath.ToSlash(rel)
		}
	}
}

// Inline renders m as a sourceMappingURL comment carrying the map as a data URI
func Inline(m *Map) (string, error) {
	data, err := m.JSON()
	if err != nil {
		return "", err
	}

	return commentPrefix + dataURIPrefix + base64.StdEncoding.EncodeToString(data) + " */", nil
}

// SplitComment separates a trailing sourceMappingURL comment from css.
// comment is nil when css does not end with one.
func SplitComment(css []byte) (body, comment []byte) {
	i := bytes.LastIndex(css, []byte(commentPrefix))
	if i < 0 {
		return css, nil
	}

	tail := bytes.TrimSpace(css[i:])
	end := bytes.Index(tail, []byte("*/"))
	if end < 0 || end+2 != len(tail) {
		return css, nil
	}

	return bytes.TrimRight(css[:i], " \t\r\n"), tail
}

// Extract decodes the inline map at the end of css
func Extract(css []byte) (*Map, error) {
	_, comment := SplitComment(css)
	if comment == nil {
		return nil, fmt.Errorf("no source map comment found")
	}

	payload := strings.TrimSuffix(strings.TrimPrefix(string(comment), commentPrefix), "*/")
	payload = strings.TrimSpace(payload)

	if !strings.HasPrefix(payload, dataURIPrefix) {
		return nil, fmt.Errorf("source map is not inline")
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(payload, dataURIPrefix))
	if err != nil {
		return nil, fmt.Errorf("invalid source map payload: %w", err)
	}

	return Parse(data)
}

// Encode renders mappings as the base64 VLQ "mappings" field
func Encode(mappings []Mapping) string {
	sorted := make([]Mapping, len(mappings))
	copy(sorted, mappings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].GenLine != sorted[j].GenLine {
			return sorted[i].GenLine < sorted[j].GenLine
		}

		return sorted[i].GenCol < sorted[j].GenCol
	})

	var b strings.Builder
	var prevSource, prevSrcLine, prevSrcCol int
	line, prevGenCol := 0, 0
	first := true

	for _, m := range sorted {
		for line < m.GenLine {
			b.WriteByte(';')
			line++
			prevGenCol = 0
			first = true
		}

		if !first {
			b.WriteByte(',')
		}

		writeVLQ(&b, m.GenCol-prevGenCol)
		writeVLQ(&b, m.Source-prevSource)
		writeVLQ(&b, m.SrcLine-prevSrcLine)
		writeVLQ(&b, m.SrcCol-prevSrcCol)

		prevGenCol = m.GenCol
		prevSource = m.Source
		prevSrcLine = m.SrcLine
		prevSrcCol = m.SrcCol
		first = false
	}

	return b.String()
}

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func writeVLQ(b *strings.Builder, v int) {
	vlq := v << 1
	if v < 0 {
		vlq = (-v << 1) | 1
	}

	for {
		digit := vlq & 31
		vlq >>= 5

		if vlq > 0 {
			digit |= 32
		}

		b.WriteByte(base64Digits[digit])

		if vlq == 0 {
			return
		}
	}
}
