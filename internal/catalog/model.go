package catalog

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

// Organization is a community group that publishes events. Events live only
// inside their organization.
type Organization struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Events      []Event   `json:"events"`
	CreatedAt   time.Time `json:"created_at"`
}

type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// Profile is an individual's interest profile.
type Profile struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Tags     []string `json:"tags"`
}

// Filter narrows ListOrganizations. The zero value lists everything.
type Filter struct {
	OwnerID string
}

var ErrNotFound = errors.New("not found")

// Repo is the catalog store. Listings come back in creation order.
type Repo interface {
	ListOrganizations(ctx context.Context, f Filter) ([]*Organization, error)
	// GetOrganizationByOwner returns (nil, nil) when the owner has none.
	GetOrganizationByOwner(ctx context.Context, ownerID string) (*Organization, error)
	// SaveOrganization inserts the organization, or updates owner, name,
	// description and tags of the one with the same slug. Events are written
	// only on insert; afterwards AppendEvent owns them. ID and CreatedAt of an
	// existing record are kept and written back into org.
	SaveOrganization(ctx context.Context, org *Organization) error
	// AppendEvent adds ev to the organization's events atomically.
	AppendEvent(ctx context.Context, orgID string, ev Event) error
	// GetProfile returns (nil, nil) when the user has none.
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	// SaveProfile upserts by user id.
	SaveProfile(ctx context.Context, p *Profile) error
	Ping(ctx context.Context) error
}

// NormalizeTags keeps string entries only. Anything that is not a list yields
// an empty, non-nil slice.
func NormalizeTags(v any) []string {
	out := []string{}
	switch vv := v.(type) {
	case []string:
		out = append(out, vv...)
	case []any:
		for _, it := range vv {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases and collapses every non [a-z0-9] run into a dash.
func Slugify(v string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(v)), "-")
	return strings.Trim(s, "-")
}

// OwnerSlug derives the slug of an organization created through the API.
func OwnerSlug(name, ownerID string) string {
	base := Slugify(name)
	if base == "" {
		base = "org"
	}
	suffix := ownerID
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return base + "-" + suffix
}

// SearchText is the plain text indexed for an event.
func (e Event) SearchText() string {
	return strings.TrimSpace(e.Title + "\n" + e.Description + "\n" + strings.Join(e.Tags, " "))
}

// AssistantDocument renders the event as the text file uploaded to the assistant.
func (e Event) AssistantDocument(orgName string) string {
	desc := orDefault(e.Description, "N/A")
	date := orDefault(e.Date, "TBD")
	tags := orDefault(strings.Join(e.Tags, ", "), "N/A")
	return strings.Join([]string{
		"Event: " + e.Title,
		"Organization: " + orgName,
		"Description: " + desc,
		"Date: " + date,
		"Tags: " + tags,
	}, "\n")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func cloneOrg(o *Organization) *Organization {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Tags = append([]string{}, o.Tags...)
	cp.Events = make([]Event, len(o.Events))
	for i, ev := range o.Events {
		ev.Tags = append([]string{}, ev.Tags...)
		cp.Events[i] = ev
	}
	return &cp
}
