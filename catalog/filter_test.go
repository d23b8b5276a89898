package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/reelshelf/omdb"
)

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		wantErr    bool
	}{
		{name: "rating comparison", expression: "Movie.Rating >= 8"},
		{name: "genre helper", expression: `hasGenre("Drama") && Movie.Year == "1994"`},
		{name: "builtin lower", expression: `lower(Movie.Title) contains "dark"`},
		{name: "empty", expression: "  ", wantErr: true},
		{name: "syntax error", expression: "Movie.Rating >=", wantErr: true},
		{name: "not boolean", expression: "Movie.Title", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := CompileFilter(tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expression, f.Expression())
		})
	}
}

func TestFilterApply(t *testing.T) {
	movies := []omdb.MovieRecord{
		{ID: "tt1", Title: "The Dark Knight", Year: "2008", Rating: 9.0, Genre: []string{"Action", "Crime", "Drama"}},
		{ID: "tt2", Title: "Toy Story", Year: "1995", Rating: 8.3, Genre: []string{"Animation", "Comedy"}},
		{ID: "tt3", Title: "Forrest Gump", Year: "1994", Rating: 8.8, Genre: []string{"Drama", "Romance"}},
		{ID: "tt4", Title: "Unrated", Year: "2020", Genre: []string{"drama"}},
	}

	tests := []struct {
		expression string
		want       []string
	}{
		{expression: "Movie.Rating >= 8.5", want: []string{"tt1", "tt3"}},
		{expression: `hasGenre("drama")`, want: []string{"tt1", "tt3", "tt4"}},
		{expression: `hasGenre("Drama") && !Movie.HasRating()`, want: []string{"tt4"}},
		{expression: `lower(Movie.Title) contains "story"`, want: []string{"tt2"}},
		{expression: `Movie.Year == "1900"`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			f, err := CompileFilter(tt.expression)
			require.NoError(t, err)

			var got []string
			for _, m := range f.Apply(movies) {
				got = append(got, m.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
