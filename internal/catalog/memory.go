package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu       sync.RWMutex
	orgs     []*Organization
	profiles map[string]*Profile
}

// NewMemoryRepo returns a process-local catalog. Insertion order is the
// natural order.
func NewMemoryRepo() Repo {
	return &memoryRepo{profiles: map[string]*Profile{}}
}

func (m *memoryRepo) ListOrganizations(ctx context.Context, f Filter) ([]*Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Organization, 0, len(m.orgs))
	for _, o := range m.orgs {
		if f.OwnerID != "" && o.OwnerID != f.OwnerID {
			continue
		}
		out = append(out, cloneOrg(o))
	}
	return out, nil
}

func (m *memoryRepo) GetOrganizationByOwner(ctx context.Context, ownerID string) (*Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orgs {
		if o.OwnerID == ownerID {
			return cloneOrg(o), nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) SaveOrganization(ctx context.Context, org *Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.orgs {
		if o.Slug == org.Slug || (org.ID != "" && o.ID == org.ID) {
			org.ID = o.ID
			org.CreatedAt = o.CreatedAt
			org.Events = cloneOrg(o).Events
			m.orgs[i] = cloneOrg(org)
			return nil
		}
	}
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}
	if org.Tags == nil {
		org.Tags = []string{}
	}
	if org.Events == nil {
		org.Events = []Event{}
	}
	m.orgs = append(m.orgs, cloneOrg(org))
	return nil
}

func (m *memoryRepo) AppendEvent(ctx context.Context, orgID string, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orgs {
		if o.ID == orgID {
			ev.Tags = append([]string{}, ev.Tags...)
			o.Events = append(o.Events, ev)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryRepo) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Tags = append([]string{}, p.Tags...)
	return &cp, nil
}

func (m *memoryRepo) SaveProfile(ctx context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	cp.Tags = append([]string{}, p.Tags...)
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *memoryRepo) Ping(ctx context.Context) error { return nil }
