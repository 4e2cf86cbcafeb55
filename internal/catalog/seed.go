package catalog

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// TagList accepts either a YAML/JSON list or a comma separated string.
type TagList []string

func (t *TagList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var out []string
		for _, p := range strings.Split(n.Value, ",") {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		*t = out
		return nil
	case yaml.SequenceNode:
		var out []string
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				continue
			}
			if s := strings.TrimSpace(c.Value); s != "" {
				out = append(out, s)
			}
		}
		*t = out
		return nil
	}
	return fmt.Errorf("tags: unsupported yaml kind %d", n.Kind)
}

type SeedEvent struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Date        string  `yaml:"date"`
	Tags        TagList `yaml:"tags"`
}

type SeedOrganization struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Tags        TagList     `yaml:"tags"`
	Events      []SeedEvent `yaml:"events"`
}

// ParseSeed reads a list of organizations from YAML or JSON. Rows without a
// name and events without a title are skipped.
func ParseSeed(b []byte) ([]SeedOrganization, error) {
	var raw []SeedOrganization
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	out := make([]SeedOrganization, 0, len(raw))
	for _, o := range raw {
		o.Name = strings.TrimSpace(o.Name)
		if o.Name == "" {
			continue
		}
		events := o.Events[:0]
		for _, ev := range o.Events {
			if strings.TrimSpace(ev.Title) == "" {
				continue
			}
			events = append(events, ev)
		}
		o.Events = events
		out = append(out, o)
	}
	if len(out) == 0 {
		return nil, errors.New("parse seed: no organizations")
	}
	return out, nil
}

// SeedSlug is the slug used for imported organizations: the name slug plus a
// short digest of the name so that re-imports replace instead of duplicate.
func SeedSlug(name string) string {
	base := Slugify(name)
	if base == "" {
		base = "org"
	}
	sum := md5.Sum([]byte(name))
	return base + "-" + hex.EncodeToString(sum[:])[:6]
}

// ToOrganization converts a seed row into a catalog record owned by ownerID.
func (s SeedOrganization) ToOrganization(ownerID string) *Organization {
	org := &Organization{
		OwnerID:     ownerID,
		Name:        s.Name,
		Slug:        SeedSlug(s.Name),
		Description: strings.TrimSpace(s.Description),
		Tags:        append([]string{}, s.Tags...),
		Events:      make([]Event, 0, len(s.Events)),
	}
	for _, ev := range s.Events {
		org.Events = append(org.Events, Event{
			ID:          uuid.NewString(),
			Title:       strings.TrimSpace(ev.Title),
			Description: strings.TrimSpace(ev.Description),
			Date:        strings.TrimSpace(ev.Date),
			Tags:        append([]string{}, ev.Tags...),
		})
	}
	return org
}

// Flatten renders organizations as the plain text seed document uploaded to
// the assistant.
func Flatten(orgs []SeedOrganization) string {
	blocks := make([]string, 0, len(orgs))
	for _, o := range orgs {
		lines := []string{
			"Organization: " + o.Name,
			"Description: " + orDefault(o.Description, "N/A"),
			"Tags: " + orDefault(strings.Join(o.Tags, ", "), "N/A"),
		}
		if len(o.Events) == 0 {
			lines = append(lines, "Events: None listed.")
		} else {
			lines = append(lines, "Events:")
			for _, ev := range o.Events {
				lines = append(lines, fmt.Sprintf("- %s | %s | Tags: %s | %s",
					ev.Title,
					orDefault(ev.Date, "TBD"),
					orDefault(strings.Join(ev.Tags, ", "), "N/A"),
					orDefault(ev.Description, "No description."),
				))
			}
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
