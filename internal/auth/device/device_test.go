package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name     string
		ua       string
		contains []string
	}{
		{"chrome on macOS", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", []string{"Chrome", " on "}},
		{"safari on iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", []string{" on iPhone"}},
		{"firefox on linux", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", []string{"Firefox", " on "}},
		{"unrecognised client", "coinquest-cli/1.0", []string{" on "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label := ParseUserAgent(tt.ua)
			for _, part := range tt.contains {
				assert.Contains(t, label, part)
			}
			assert.Equal(t, strings.TrimSpace(label), label)
			assert.NotContains(t, label, "  ")
		})
	}

	t.Run("blank header", func(t *testing.T) {
		assert.Equal(t, "Unknown Device", ParseUserAgent("  "))
	})
}
