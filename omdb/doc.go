// Package omdb provides a client for the Open Movie Database API.
//
// The API answers one title per request, so callers that need many titles
// issue many lookups. A lookup for an unknown title is not an error: the
// client returns a MovieRecord whose Status is ResponseFailure and whose
// Error carries the API's message. Go errors are reserved for transport
// failures, unexpected HTTP statuses and undecodable bodies.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := omdb.NewClient(
//		"https://www.omdbapi.com/",
//		"your-api-key",
//		logger,
//		omdb.WithTimeout(30*time.Second),
//		omdb.WithRateLimit(rate.Limit(10), 10),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	movie, err := client.FetchByTitle(ctx, "Inception")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if movie.Admitted() {
//		fmt.Println(movie.Title, movie.PosterURL)
//	}
//
// Poster URLs on successful records are already rewritten by poster.Normalize.
package omdb
