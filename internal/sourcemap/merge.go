package sourcemap

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Section places a map at an offset inside a larger generated file
type Section struct {
	// Generated position of the section's first character, 0-based
	Line   int
	Column int

	// Generated lines the section covers; mappings past it are dropped. 0 means unbounded.
	Lines int

	Map *Map
}

// Merge combines sections into one map for file.
// Sources are de-duplicated; contents are kept only when every section carries them.
func Merge(file string, sections []Section) (*Map, error) {
	out := &Map{
		Version: 3,
		File:    file,
		Sources: []string{},
		Names:   []string{},
	}

	index := make(map[string]int)
	contents := []string{}
	keepContents := true

	var mappings []Mapping

	for _, s := range sections {
		if s.Map == nil {
			continue
		}

		decoded, err := Decode(s.Map.Mappings)
		if err != nil {
			return nil, fmt.Errorf("section at line %d: %w", s.Line+1, err)
		}

		if len(s.Map.SourcesContent) != len(s.Map.Sources) {
			keepContents = false
		}

		remap := make([]int, len(s.Map.Sources))
		for i, src := range s.Map.Sources {
			if s.Map.SourceRoot != "" {
				src = strings.TrimSuffix(s.Map.SourceRoot, "/") + "/" + src
			}

			n, ok := index[src]
			if !ok {
				n = len(out.Sources)
				index[src] = n
				out.Sources = append(out.Sources, src)

				content := ""
				if i < len(s.Map.SourcesContent) {
					content = s.Map.SourcesContent[i]
				}

				contents = append(contents, content)
			}

			remap[i] = n
		}

		for _, m := range decoded {
			if s.Lines > 0 && m.GenLine >= s.Lines {
				continue
			}

			if m.Source < 0 || m.Source >= len(remap) {
				return nil, fmt.Errorf("section at line %d: source index %d out of range", s.Line+1, m.Source)
			}

			if m.GenLine == 0 {
				m.GenCol += s.Column
			}

			m.GenLine += s.Line
			m.Source = remap[m.Source]
			mappings = append(mappings, m)
		}
	}

	if keepContents && len(out.Sources) > 0 {
		out.SourcesContent = contents
	}

	out.Mappings = Encode(mappings)

	return out, nil
}

// SourcePaths returns the local files named by the map's sources.
// Relative sources resolve against dir; sources with a non-file URL scheme are skipped.
func (m *Map) SourcePaths(dir string) []string {
	paths := make([]string, 0, len(m.Sources))

	for _, src := range m.Sources {
		if m.SourceRoot != "" {
			src = strings.TrimSuffix(m.SourceRoot, "/") + "/" + src
		}

		p := filepath.FromSlash(src)
		if !filepath.IsAbs(p) {
			if u, err := url.Parse(src); err == nil && u.Scheme != "" {
				if u.Scheme != "file" {
					continue
				}

				p = filepath.FromSlash(u.Path)
			}
		}

		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}

		paths = append(paths, filepath.Clean(p))
	}

	return paths
}

// Decode parses the base64 VLQ "mappings" field.
// Segments without a source position are skipped.
func Decode(mappings string) ([]Mapping, error) {
	var out []Mapping
	var source, srcLine, srcCol int

	for line, group := range strings.Split(mappings, ";") {
		genCol := 0

		for _, seg := range strings.Split(group, ",") {
			if seg == "" {
				continue
			}

			fields, err := readVLQs(seg)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line+1, err)
			}

			switch len(fields) {
			case 1:
				genCol += fields[0]
				continue
			case 4, 5:
			default:
				return nil, fmt.Errorf("line %d: segment %q has %d fields", line+1, seg, len(fields))
			}

			genCol += fields[0]
			source += fields[1]
			srcLine += fields[2]
			srcCol += fields[3]

			out = append(out, Mapping{
				GenLine: line,
				GenCol:  genCol,
				Source:  source,
				SrcLine: srcLine,
				SrcCol:  srcCol,
			})
		}
	}

	return out, nil
}

func readVLQs(seg string) ([]int, error) {
	var fields []int
	value, shift := 0, 0

	for i := 0; i < len(seg); i++ {
		digit := strings.IndexByte(base64Digits, seg[i])
		if digit < 0 {
			return nil, fmt.Errorf("invalid base64 digit %q", seg[i])
		}

		value |= (digit & 31) << shift

		if digit&32 != 0 {
			shift += 5
			continue
		}

		n := value >> 1
		if value&1 == 1 {
			n = -n
		}

		fields = append(fields, n)
		value, shift = 0, 0
	}

	if shift != 0 {
		return nil, fmt.Errorf("truncated segment %q", seg)
	}

	return fields, nil
}
