package parser

import (
	"testing"

	"github.com/couchcryptid/threat-level-monitor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mi5Feed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>MI5 - The Security Service: UK Threat Level</title>
    <link>https://www.mi5.gov.uk/threat-levels</link>
    <description>The current UK national threat level. Levels are LOW, MODERATE, SUBSTANTIAL, SEVERE and CRITICAL.</description>
    <item>
      <title>Current Threat Level: SUBSTANTIAL</title>
      <description>The threat to the UK from terrorism is SUBSTANTIAL.</description>
      <pubDate>Fri, 09 Feb 2024 09:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func TestFeedParser_Parse(t *testing.T) {
	t.Run("mi5 rss item title", func(t *testing.T) {
		res, ok := NewFeedParser().Parse([]byte(mi5Feed))
		require.True(t, ok)
		assert.Equal(t, domain.LevelSubstantial, res.Level)
		assert.Equal(t, domain.MatchFeed, res.Match)
	})

	t.Run("single title field", func(t *testing.T) {
		level, ok := ParseFeed([]byte(`<feed><title>Current threat level: CRITICAL</title></feed>`))
		require.True(t, ok)
		assert.Equal(t, domain.LevelCritical, level)
	})

	t.Run("cdata and nested depth", func(t *testing.T) {
		doc := `<a><b><c><entry><title><![CDATA[ Current threat level: severe ]]></title></entry></c></b></a>`
		level, ok := ParseFeed([]byte(doc))
		require.True(t, ok)
		assert.Equal(t, domain.LevelSevere, level)
	})

	t.Run("document order decides", func(t *testing.T) {
		doc := `<rss><channel>
			<item><title>Previous level was moderate</title></item>
			<item><title>Current threat level: SEVERE</title></item>
		</channel></rss>`
		level, ok := ParseFeed([]byte(doc))
		require.True(t, ok)
		assert.Equal(t, domain.LevelModerate, level)
	})

	t.Run("titles without a level fall through to later titles", func(t *testing.T) {
		doc := `<rss><channel><title>UK Threat Level</title><item><title>Now: low</title></item></channel></rss>`
		level, ok := ParseFeed([]byte(doc))
		require.True(t, ok)
		assert.Equal(t, domain.LevelLow, level)
	})

	t.Run("latin-1 declaration", func(t *testing.T) {
		doc := `<?xml version="1.0" encoding="ISO-8859-1"?><rss><item><title>Current threat level: MODERATE</title></item></rss>`
		level, ok := ParseFeed([]byte(doc))
		require.True(t, ok)
		assert.Equal(t, domain.LevelModerate, level)
	})
}

func TestFeedParser_NotFound(t *testing.T) {
	cases := map[string]string{
		"truncated":           `<rss><channel><item><title>Current threat level: CRITICAL</title>`,
		"mismatched tags":     `<rss><title>Current threat level: CRITICAL</item></rss>`,
		"html page":           `<!DOCTYPE html><html><body><br><p>Current threat level: SEVERE</p></body></html>`,
		"plain text":          `Current threat level: SEVERE`,
		"empty":               ``,
		"no level in title":   `<rss><channel><title>UK Threat Level</title><item><title>Check back later</title></item></channel></rss>`,
		"level outside title": `<rss><channel><title>UK Threat Level</title><description>SEVERE</description></channel></rss>`,
		"partial word only":   `<rss><item><title>Threat LOWERED</title></item></rss>`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, ok := NewFeedParser().Parse([]byte(doc))
				assert.False(t, ok)
			})
		})
	}
}

func TestFeedParser_CustomTitleElements(t *testing.T) {
	p := &FeedParser{TitleElements: []string{"headline"}}
	res, ok := p.Parse([]byte(`<doc><title>nothing</title><Headline>Threat is Critical</Headline></doc>`))
	require.True(t, ok)
	assert.Equal(t, domain.LevelCritical, res.Level)
}

func TestForKind(t *testing.T) {
	p, ok := ForKind(domain.SourceStructuredFeed, false)
	require.True(t, ok)
	assert.IsType(t, &FeedParser{}, p)

	p, ok = ForKind(domain.SourceUnstructuredPage, true)
	require.True(t, ok)
	require.IsType(t, &PageParser{}, p)
	assert.True(t, p.(*PageParser).AllowLoose)

	_, ok = ForKind(domain.SourceKind("carrier-pigeon"), true)
	assert.False(t, ok)
}
