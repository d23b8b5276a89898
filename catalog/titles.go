package catalog

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

var defaultTitles = []string{
	// Featured first
	"Avengers",

	// Classics
	"The Dark Knight", "Inception", "Interstellar", "The Godfather", "Pulp Fiction",
	"Forrest Gump", "Goodfellas", "Fight Club", "The Shawshank Redemption", "Schindler's List",
	"Casablanca", "The Wizard of Oz", "Gone with the Wind", "Lawrence of Arabia",

	// Blockbusters
	"Titanic", "The Matrix", "Star Wars", "Jurassic Park",
	"Back to the Future", "Gladiator", "The Lord of the Rings", "The Hobbit",

	// Animation
	"The Lion King", "Beauty and the Beast", "Aladdin", "Toy Story", "Finding Nemo",
	"The Incredibles", "Up", "WALL-E", "Inside Out", "Coco", "Frozen", "Moana",

	// Marvel
	"Spider-Man", "Iron Man", "Black Panther", "Captain Marvel", "Doctor Strange",
	"Guardians of the Galaxy", "Deadpool", "Ant-Man", "Thor", "The Avengers",

	// Recent
	"Joker", "Parasite", "Dune", "Top Gun", "No Time to Die", "The Batman",
	"Spider-Man No Way Home", "Avengers Endgame", "Black Widow", "Shang-Chi",
}

// DefaultTitles returns a copy of the curated browse list
func DefaultTitles() []string {
	return append([]string(nil), defaultTitles...)
}

// LoadTitles reads a newline separated title list from path. Blank lines and
// lines starting with '#' are skipped.
func LoadTitles(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open title list: %w", err)
	}
	defer f.Close()

	var titles []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		titles = append(titles, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read title list: %w", err)
	}

	if len(titles) == 0 {
		return nil, fmt.Errorf("title list %s is empty", path)
	}
	return titles, nil
}
