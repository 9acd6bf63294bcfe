package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuzable/podkey/pkg/model"
)

func TestBuildOPML(t *testing.T) {
	expected := `<?xml version="1.0" encoding="UTF-8"?>
<opml version="1.0">
	<head>
		<title>Podkey subscription</title>
	</head>
	<body>
		<outline text="Tech" title="Tech" type="rss" xmlUrl="https://example.com/tech.xml"></outline>
		<outline text="News &amp; Views" title="News &amp; Views" type="rss" xmlUrl="https://example.com/news.xml"></outline>
	</body>
</opml>`

	podcasts := []*model.Podcast{
		{Name: "Tech", URL: "https://example.com/tech.xml"},
		{Name: "News & Views", URL: "https://example.com/news.xml"},
	}

	out, err := BuildOPML(podcasts, "Podkey subscription")
	require.NoError(t, err)
	assert.Equal(t, expected, out)
}

func TestBuildOPML_MissingURL(t *testing.T) {
	_, err := BuildOPML([]*model.Podcast{{Name: "Tech"}}, "x")
	assert.Error(t, err)
}
