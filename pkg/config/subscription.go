package config

import (
	"encoding/xml"
	"io/ioutil"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/fuzable/podkey/pkg/model"
)

// Subscription is the XML subscription list.
type Subscription struct {
	XMLName  xml.Name       `xml:"Subscription"`
	Podcasts []PodcastEntry `xml:"Podcast"`
	Groups   []GroupEntry   `xml:"Group"`
}

type PodcastEntry struct {
	Name           string `xml:"Name"`
	URL            string `xml:"Url"`
	EpisodesToKeep int    `xml:"EpisodesToKeep"`
	Order          string `xml:"Order"`
	// Remove is stripped from episode titles
	Remove string `xml:"Remove"`
	// Exclude drops episodes whose title starts with it
	Exclude string `xml:"Exclude"`
}

type GroupEntry struct {
	Name     string   `xml:"name,attr"`
	Podcasts []string `xml:"Podcast"`
}

// LoadSubscription reads and validates a subscription list.
func LoadSubscription(path string) (*Subscription, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read subscription file: %s", path)
	}

	return ParseSubscription(data)
}

func ParseSubscription(data []byte) (*Subscription, error) {
	sub := Subscription{}
	if err := xml.Unmarshal(data, &sub); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal subscription xml")
	}

	for i := range sub.Podcasts {
		p := &sub.Podcasts[i]
		p.Name = strings.TrimSpace(p.Name)
		p.URL = strings.TrimSpace(p.URL)
		p.Order = strings.TrimSpace(p.Order)
	}

	for i := range sub.Groups {
		g := &sub.Groups[i]
		g.Name = strings.TrimSpace(g.Name)
		for j := range g.Podcasts {
			g.Podcasts[j] = strings.TrimSpace(g.Podcasts[j])
		}
	}

	if err := sub.validate(); err != nil {
		return nil, err
	}

	return &sub, nil
}

func (s *Subscription) validate() error {
	var result *multierror.Error

	names := make(map[string]bool, len(s.Podcasts))
	for i, p := range s.Podcasts {
		if p.Name == "" {
			result = multierror.Append(result, errors.Errorf("podcast %d has no name", i+1))
			continue
		}
		if strings.ContainsAny(p.Name, `/\`) || p.Name == "." || p.Name == ".." {
			result = multierror.Append(result, errors.Errorf("podcast name %q can't be used as a folder name", p.Name))
		}
		if names[p.Name] {
			result = multierror.Append(result, errors.Errorf("podcast %q is declared more than once", p.Name))
		}
		names[p.Name] = true

		if p.URL == "" {
			result = multierror.Append(result, errors.Errorf("URL is required for %q", p.Name))
		}
		if p.EpisodesToKeep < 0 {
			result = multierror.Append(result, errors.Errorf("episodes to keep can't be negative for %q", p.Name))
		}
		if _, err := model.ParseOrder(p.Order); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "invalid order for %q", p.Name))
		}
	}

	groups := make(map[string]bool, len(s.Groups))
	for _, g := range s.Groups {
		if g.Name == "" {
			result = multierror.Append(result, errors.New("group name is required"))
			continue
		}
		if groups[g.Name] {
			result = multierror.Append(result, errors.Errorf("group %q is declared more than once", g.Name))
		}
		groups[g.Name] = true

		for _, member := range g.Podcasts {
			if !names[member] {
				result = multierror.Append(result, errors.Errorf("group %q refers to unknown podcast %q", g.Name, member))
			}
		}
	}

	return result.ErrorOrNil()
}

// ToPodcasts converts the entries into immutable podcast definitions.
func (s *Subscription) ToPodcasts() []*model.Podcast {
	podcasts := make([]*model.Podcast, 0, len(s.Podcasts))
	for _, p := range s.Podcasts {
		// Validated on load
		order, _ := model.ParseOrder(p.Order)

		podcasts = append(podcasts, &model.Podcast{
			Name:           p.Name,
			URL:            p.URL,
			RetentionCount: p.EpisodesToKeep,
			Order:          order,
			TitleStrip:     p.Remove,
			TitleExclude:   p.Exclude,
		})
	}

	return podcasts
}

func (s *Subscription) ToGroups() []*model.Group {
	groups := make([]*model.Group, 0, len(s.Groups))
	for _, g := range s.Groups {
		groups = append(groups, &model.Group{Name: g.Name, Podcasts: append([]string(nil), g.Podcasts...)})
	}

	return groups
}
