// assets/embed.go
//
// Embedded defaults shipped inside the binary:
//   - catalog.yaml: scenario tables for every game mode.
//   - migrations/*.sql: leaderboard schema for the SQLite backend.

package assets

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed catalog.yaml migrations/*.sql
var FS embed.FS

// CatalogYAML returns the embedded default scenario catalog.
func CatalogYAML() ([]byte, error) {
	return FS.ReadFile("catalog.yaml")
}

// Migrations returns the embedded migration file names in lexical order.
func Migrations() ([]string, error) {
	names, err := fs.Glob(FS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
