package database

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Query names one of the statements the page repository runs.
type Query int

const (
	CreatePagesTable Query = iota
	AllPages
	AllPagesData
	GetPage
	CreatePage
	SavePage
	DeletePage

	numQueries
)

var queryKeys = [numQueries]string{
	CreatePagesTable: "create-pages-table",
	AllPages:         "all-pages",
	AllPagesData:     "all-pages-data",
	GetPage:          "get-page",
	CreatePage:       "create-page",
	SavePage:         "save-page",
	DeletePage:       "delete-page",
}

// String returns the key the query is stored under in a definitions file.
func (q Query) String() string {
	if q < 0 || q >= numQueries {
		return fmt.Sprintf("query(%d)", int(q))
	}
	return queryKeys[q]
}

//go:embed queries.yaml
var defaultQueries []byte

// Queries maps every Query to its SQL text. It is immutable once loaded.
type Queries struct {
	text [numQueries]string
}

// LoadQueries reads query definitions from path, or the built-in definitions
// when path is empty.
func LoadQueries(path string) (*Queries, error) {
	if path == "" {
		return ParseQueries(defaultQueries)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: ErrConfiguration, Op: "read queries", Err: err}
	}
	return ParseQueries(data)
}

// ParseQueries decodes a YAML mapping of query keys to SQL text and checks
// that every query is defined.
func ParseQueries(data []byte) (*Queries, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &Error{Kind: ErrConfiguration, Op: "parse queries", Err: err}
	}

	var q Queries
	var missing []string
	for i, key := range queryKeys {
		text := strings.TrimSpace(raw[key])
		if text == "" {
			missing = append(missing, key)
			continue
		}
		q.text[i] = text
	}
	if len(missing) > 0 {
		return nil, &Error{
			Kind: ErrConfiguration,
			Op:   "load queries",
			Err:  fmt.Errorf("missing %s", strings.Join(missing, ", ")),
		}
	}
	return &q, nil
}

// Get returns the SQL text for query.
func (q *Queries) Get(query Query) string {
	return q.text[query]
}
