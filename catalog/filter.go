package catalog

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/reelshelf/omdb"
)

// Filter is a compiled display filter over catalog entries
type Filter struct {
	program *vm.Program
	expr    string
}

// CompileFilter compiles a filter expression such as
//
//	Movie.Rating >= 8 && hasGenre("Drama")
//	lower(Movie.Title) contains "dark"
//
// Expressions see the record as Movie plus the hasGenre helper; the
// expression language's own builtins (lower, upper, len, ...) are available.
func CompileFilter(expression string) (*Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("empty filter expression")
	}

	program, err := expr.Compile(expression,
		expr.Env(filterEnv(omdb.MovieRecord{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter expression: %w", err)
	}

	return &Filter{
		program: program,
		expr:    expression,
	}, nil
}

// Expression returns the source expression
func (f *Filter) Expression() string {
	return f.expr
}

// Evaluate reports whether movie matches the filter. Evaluation errors count
// as no match.
func (f *Filter) Evaluate(movie omdb.MovieRecord) bool {
	out, err := expr.Run(f.program, filterEnv(movie))
	if err != nil {
		return false
	}
	matched, ok := out.(bool)
	return ok && matched
}

// Apply returns the matching movies in their original order
func (f *Filter) Apply(movies []omdb.MovieRecord) []omdb.MovieRecord {
	var matched []omdb.MovieRecord
	for _, m := range movies {
		if f.Evaluate(m) {
			matched = append(matched, m)
		}
	}
	return matched
}

func filterEnv(movie omdb.MovieRecord) map[string]any {
	return map[string]any{
		"Movie": movie,

		"hasGenre": func(genre string) bool {
			for _, g := range movie.Genre {
				if strings.EqualFold(g, genre) {
					return true
				}
			}
			return false
		},
	}
}
