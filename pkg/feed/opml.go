package feed

import (
	"encoding/xml"

	"github.com/pkg/errors"

	"github.com/fuzable/podkey/pkg/model"
)

type opml struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    head
	Body    body
}

type head struct {
	XMLName xml.Name `xml:"head"`
	Title   string   `xml:"title"`
}

type body struct {
	XMLName  xml.Name  `xml:"body"`
	Outlines []outline `xml:"outline"`
}

type outline struct {
	Text   string `xml:"text,attr"`
	Title  string `xml:"title,attr"`
	Type   string `xml:"type,attr"`
	XMLURL string `xml:"xmlUrl,attr"`
}

// BuildOPML renders the subscribed podcasts as an OPML outline list.
func BuildOPML(podcasts []*model.Podcast, title string) (string, error) {
	ou := make([]outline, 0, len(podcasts))
	for _, p := range podcasts {
		if p.URL == "" {
			return "", errors.Errorf("podcast %q has no feed url", p.Name)
		}
		ou = append(ou, outline{Title: p.Name, Text: p.Name, Type: "rss", XMLURL: p.URL})
	}

	op := opml{Version: "1.0"}
	op.Head = head{Title: title}
	op.Body = body{Outlines: ou}

	out, err := xml.MarshalIndent(op, "", "\t")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal opml")
	}

	return xml.Header + string(out), nil
}
