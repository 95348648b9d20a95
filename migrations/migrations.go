// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

// FS holds every migration file, named NNNNNN_description.{up,down}.sql.
//
//go:embed *.sql
var FS embed.FS

// Up returns the contents of every up migration in version order.
func Up() ([]string, error) {
	names, err := fs.Glob(FS, "*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		b, err := FS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out = append(out, strings.TrimSpace(string(b)))
	}
	return out, nil
}
