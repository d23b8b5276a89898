package poster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty passthrough",
			in:   "",
			want: "",
		},
		{
			name: "sentinel passthrough",
			in:   "N/A",
			want: "N/A",
		},
		{
			name: "amazon SX300 poster",
			in:   "https://m.media-amazon.com/images/M/MV5BMjAxMzY3NjcxNF5BMl5BanBnXkFtZTcwNTI5OTM0Mw@@._V1_SX300.jpg",
			want: "https://m.media-amazon.com/images/M/MV5BMjAxMzY3NjcxNF5BMl5BanBnXkFtZTcwNTI5OTM0Mw@@._V1__SX1000_CR0,0,1000,1500_AL_.jpg",
		},
		{
			name: "SY300 without V1 marker",
			in:   "https://example.com/poster_SY300.png",
			want: "https://example.com/poster_SY1500.png",
		},
		{
			name: "repeated SX300 tokens",
			in:   "https://example.com/SX300/SX300/SX300.png",
			want: "https://example.com/SX1000/SX600/SX800.png",
		},
		{
			name: "unmatched url",
			in:   "https://example.com/poster.png",
			want: "https://example.com/poster.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIsStable(t *testing.T) {
	in := "https://m.media-amazon.com/images/M/abc@._V1_SX300.jpg"
	once := Normalize(in)
	assert.NotEqual(t, in, once)
	assert.Equal(t, once, Normalize(once))
}

func TestIsAvailable(t *testing.T) {
	assert.False(t, IsAvailable(""))
	assert.False(t, IsAvailable(Unavailable))
	assert.True(t, IsAvailable("https://example.com/a.jpg"))
}
