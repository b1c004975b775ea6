package sourcemap

import (
	"path/filepath"
	"testing"

	gosourcemap "github.com/go-sourcemap/sourcemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		mappings []Mapping
		want     string
	}{
		{"empty", nil, ""},
		{"single origin", []Mapping{{}}, "AAAA"},
		{"two lines", []Mapping{{GenLine: 0}, {GenLine: 1, SrcLine: 1}}, "AAAA;AACA"},
		{"skipped line", []Mapping{{GenLine: 0}, {GenLine: 2, SrcLine: 5}}, "AAAA;;AAKA"},
		{"same line segments", []Mapping{{GenCol: 0}, {GenCol: 5, SrcCol: 5}}, "AAAA,KAAK"},
		{"negative delta", []Mapping{{GenLine: 0, SrcLine: 3}, {GenLine: 1, SrcLine: 1}}, "AAGA;AAFA"},
		{"large value", []Mapping{{GenCol: 16}}, "gBAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.mappings))
		})
	}
}

func TestIdentity_ResolvesThroughConsumer(t *testing.T) {
	content := "body {\n  color: red;\n}\n"
	m := Identity("a.scss", content)

	assert.Equal(t, 3, m.Version)
	assert.Equal(t, []string{"a.scss"}, m.Sources)
	assert.Equal(t, []string{content}, m.SourcesContent)
	assert.Equal(t, "AAAA;AACA;AACA;AACA", m.Mappings)

	data, err := m.JSON()
	require.NoError(t, err)

	consumer, err := gosourcemap.Parse("", data)
	require.NoError(t, err)

	for line := 1; line <= 3; line++ {
		source, _, srcLine, _, ok := consumer.Source(line, 0)
		require.True(t, ok, "line %d should be mapped", line)
		assert.Equal(t, "a.scss", source)
		assert.Equal(t, line, srcLine)
	}
}

func TestParse(t *testing.T) {
	m, err := Parse([]byte(`{"version":3,"sources":["a.scss"],"mappings":"AAAA"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{}, m.Names)

	_, err = Parse([]byte(`{"version":2}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestRelativeSources(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "project")
	abs := filepath.Join(base, "assets", "b.scss")

	m := &Map{Version: 3, Sources: []string{
		"file://" + filepath.ToSlash(filepath.Join(base, "assets", "a.scss")),
		abs,
		"already/relative.scss",
	}}
	m.RelativeSources(base)

	assert.Equal(t, []string{"assets/a.scss", "assets/b.scss", "already/relative.scss"}, m.Sources)
}

func TestInlineAndExtract(t *testing.T) {
	m := Identity("a.scss", "body{color:red}")

	comment, err := Inline(m)
	require.NoError(t, err)
	assert.Contains(t, comment, "/*# sourceMappingURL=data:application/json;charset=utf8;base64,")

	css := []byte("body{color:red}\n" + comment + "\n")
	body, tail := SplitComment(css)
	assert.Equal(t, "body{color:red}", string(body))
	assert.Equal(t, comment, string(tail))

	got, err := Extract(css)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestSplitComment_NoTrailingComment(t *testing.T) {
	css := []byte("/*# sourceMappingURL=x.map */\nbody{color:red}")
	body, comment := SplitComment(css)
	assert.Equal(t, css, body)
	assert.Nil(t, comment)

	_, err := Extract([]byte("p{}"))
	assert.Error(t, err)

	_, err = Extract([]byte("p{}\n/*# sourceMappingURL=app.css.map */"))
	assert.Error(t, err, "external maps are not extracted")
}

func TestDecode_RoundTripsEncode(t *testing.T) {
	mappings := []Mapping{
		{GenLine: 0, GenCol: 0, Source: 0, SrcLine: 3, SrcCol: 2},
		{GenLine: 0, GenCol: 16, Source: 1, SrcLine: 0, SrcCol: 0},
		{GenLine: 2, GenCol: 4, Source: 0, SrcLine: 1, SrcCol: 40},
	}

	got, err := Decode(Encode(mappings))
	require.NoError(t, err)
	assert.Equal(t, mappings, got)
}

func TestDecode(t *testing.T) {
	// Single-field segments carry no source position
	got, err := Decode("A,CAAC;;AACA")
	require.NoError(t, err)
	assert.Equal(t, []Mapping{
		{GenLine: 0, GenCol: 1, SrcCol: 1},
		{GenLine: 2, GenCol: 0, SrcLine: 1, SrcCol: 1},
	}, got)

	_, err = Decode("AA!A")
	assert.Error(t, err)

	_, err = Decode("AAg")
	assert.Error(t, err, "a continuation bit with no following digit is truncated")

	_, err = Decode("AA")
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	a := Identity("a.scss", "body{color:red}")
	b := &Map{
		Version:  3,
		Sources:  []string{"b.scss", "a.scss"},
		Names:    []string{},
		Mappings: Encode([]Mapping{{Source: 0}, {GenLine: 1, Source: 1, SrcLine: 4}, {GenLine: 5, Source: 0}}),
	}

	m, err := Merge("app.css", []Section{
		{Line: 0, Lines: 1, Map: a},
		{Line: 1, Lines: 2, Map: b},
		{Line: 3, Map: nil},
	})
	require.NoError(t, err)

	assert.Equal(t, "app.css", m.File)
	assert.Equal(t, []string{"a.scss", "b.scss"}, m.Sources)
	assert.Nil(t, m.SourcesContent, "b carries no contents")

	got, err := Decode(m.Mappings)
	require.NoError(t, err)
	assert.Equal(t, []Mapping{
		{GenLine: 0, Source: 0},
		{GenLine: 1, Source: 1},
		{GenLine: 2, Source: 0, SrcLine: 4},
	}, got, "mappings past a section's lines are dropped")
}

func TestMerge_SourceRootAndContents(t *testing.T) {
	a := Identity("a.scss", "a{}")
	a.SourceRoot = "styles/"
	b := Identity("b.scss", "b{}")

	m, err := Merge("app.css", []Section{{Map: a}, {Line: 1, Map: b}})
	require.NoError(t, err)
	assert.Equal(t, []string{"styles/a.scss", "b.scss"}, m.Sources)
	assert.Equal(t, []string{"a{}", "b{}"}, m.SourcesContent)

	_, err = Merge("app.css", []Section{{Map: &Map{Version: 3, Mappings: "AAAA"}}})
	assert.Error(t, err, "a mapping naming a missing source is rejected")
}

func TestSourcePaths(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "project")
	dir := filepath.Join(base, "assets")

	m := &Map{Version: 3, Sources: []string{
		"file://" + filepath.ToSlash(filepath.Join(base, "lib", "_mixins.scss")),
		filepath.Join(base, "assets", "a.scss"),
		"../shared/_vars.scss",
		"data:text/css,stdin",
		"https://example.com/remote.scss",
	}}

	assert.Equal(t, []string{
		filepath.Join(base, "lib", "_mixins.scss"),
		filepath.Join(base, "assets", "a.scss"),
		filepath.Join(base, "shared", "_vars.scss"),
	}, m.SourcePaths(dir))
}
