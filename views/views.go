// Package views holds the HTML templates and the helpers they call.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

//go:embed templates
var files embed.FS

// markdown renderer configured with Goldmark and useful extensions
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

// Markdown renders src to HTML. Raw HTML in src is dropped from the output.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// FormatDate formats a time.Time or *time.Time; nil and zero times give "".
func FormatDate(v any, layout string) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(layout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format(layout)
	}
	return ""
}

// Funcs returns the template helpers. media resolves stored upload paths
// into URLs.
func Funcs(media func(string) string) template.FuncMap {
	if media == nil {
		media = func(s string) string { return s }
	}
	return template.FuncMap{
		"markdown": Markdown,
		"date":     FormatDate,
		"now":      time.Now,
		"media":    media,
		"join":     strings.Join,
		"lower":    strings.ToLower,
		"string":   func(v any) string { return fmt.Sprint(v) },
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
		"get": func(m map[string]string, key string) string { return m[key] },
	}
}

// Load parses every embedded template. Templates are addressed by the names
// they define, such as "main/index.html" or "admin/form.html".
func Load(funcs template.FuncMap) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(files, "templates/*/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}
