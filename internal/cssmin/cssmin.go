// Package cssmin minifies stylesheets with tdewolff/minify.
package cssmin

import (
	"fmt"

	"github.com/Norgate-AV/assetpipe/internal/sourcemap"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
)

const mediaType = "text/css"

// Options tune the CSS minifier
type Options struct {
	// Significant digits kept in numbers; 0 keeps them all
	Precision int

	// Avoid CSS3 shorthands older browsers cannot read
	KeepCSS2 bool
}

type Minifier struct {
	m *minify.M
}

func New(opts Options) *Minifier {
	m := minify.New()
	m.Add(mediaType, &css.Minifier{
		Precision: opts.Precision,
		KeepCSS2:  opts.KeepCSS2,
	})

	return &Minifier{m: m}
}

// Minify compresses src, keeping a trailing sourceMappingURL comment on its own line
func (m *Minifier) Minify(src []byte) ([]byte, error) {
	body, comment := sourcemap.SplitComment(src)

	out, err := m.m.Bytes(mediaType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to minify css: %w", err)
	}

	if comment == nil {
		return out, nil
	}

	res := make([]byte, 0, len(out)+1+len(comment))
	res = append(res, out...)
	res = append(res, '\n')
	res = append(res, comment...)

	return res, nil
}
