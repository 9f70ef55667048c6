// Package web holds the embedded HTML templates and static assets served
// by the API server.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Templates parses the embedded page templates with the shared helper
// functions.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"titlecase": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"formatDate": func(t time.Time) string {
			return t.Format("Mon, 2 Jan 2006")
		},
		"reltime": func(t any) string {
			switch v := t.(type) {
			case time.Time:
				return timediff.TimeDiff(v)
			case *time.Time:
				if v != nil {
					return timediff.TimeDiff(*v)
				}
			}
			return ""
		},
		"money": func(amount float64) string {
			return humanize.CommafWithDigits(amount, 2)
		},
		"humanOrdinal": humanize.Ordinal,
	}).ParseFS(templatesFS, "templates/*.html")
}

// Static returns the embedded static assets rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
