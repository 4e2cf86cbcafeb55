package pgrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gogogo1024/cultura/internal/catalog"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// Repo stores organizations with tags and events as JSONB columns.
type Repo struct {
	db *sql.DB
}

// New opens the database and creates the tables when missing.
func New(ctx context.Context, dsn string) (*Repo, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	r := &Repo{db: db}
	if err := r.ensureTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) ensureTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS organizations (
			id          TEXT        PRIMARY KEY,
			owner_id    TEXT        NOT NULL,
			name        TEXT        NOT NULL,
			slug        TEXT        NOT NULL UNIQUE,
			description TEXT        NOT NULL DEFAULT '',
			tags        JSONB       NOT NULL DEFAULT '[]'::jsonb,
			events      JSONB       NOT NULL DEFAULT '[]'::jsonb,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_organizations_owner ON organizations(owner_id)`,
		`CREATE TABLE IF NOT EXISTS individual_profiles (
			user_id  TEXT  PRIMARY KEY,
			username TEXT  NOT NULL,
			tags     JSONB NOT NULL DEFAULT '[]'::jsonb
		)`,
	}
	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

const orgColumns = `id, owner_id, name, slug, description, tags, events, created_at`

func (r *Repo) ListOrganizations(ctx context.Context, f catalog.Filter) ([]*catalog.Organization, error) {
	where, args := []string{"1 = 1"}, []any{}
	if f.OwnerID != "" {
		where, args = append(where, "owner_id = "+placeholder(len(args)+1)), append(args, f.OwnerID)
	}
	query := fmt.Sprintf(`SELECT %s FROM organizations WHERE %s ORDER BY created_at, id`,
		orgColumns, strings.Join(where, " AND "))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*catalog.Organization{}
	for rows.Next() {
		o, err := scanOrg(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *Repo) GetOrganizationByOwner(ctx context.Context, ownerID string) (*catalog.Organization, error) {
	list, err := r.ListOrganizations(ctx, catalog.Filter{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (r *Repo) SaveOrganization(ctx context.Context, org *catalog.Organization) error {
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}
	tags, err := marshalList(org.Tags)
	if err != nil {
		return err
	}
	events, err := json.Marshal(orEmptyEvents(org.Events))
	if err != nil {
		return err
	}
	stmt := `INSERT INTO organizations (id, owner_id, name, slug, description, tags, events, created_at)
	         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	         ON CONFLICT (slug) DO UPDATE SET
	           owner_id = EXCLUDED.owner_id,
	           name = EXCLUDED.name,
	           description = EXCLUDED.description,
	           tags = EXCLUDED.tags
	         RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, stmt,
		org.ID, org.OwnerID, org.Name, org.Slug, org.Description, tags, events, org.CreatedAt,
	).Scan(&org.ID, &org.CreatedAt)
}

// AppendEvent concatenates in SQL so concurrent appends never overwrite each other.
func (r *Repo) AppendEvent(ctx context.Context, orgID string, ev catalog.Event) error {
	if ev.Tags == nil {
		ev.Tags = []string{}
	}
	b, err := json.Marshal([]catalog.Event{ev})
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE organizations SET events = events || $1::jsonb WHERE id = $2`, b, orgID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *Repo) GetProfile(ctx context.Context, userID string) (*catalog.Profile, error) {
	var (
		p    catalog.Profile
		tags []byte
	)
	err := r.db.QueryRowContext(ctx, `SELECT user_id, username, tags FROM individual_profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.Username, &tags)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Tags = decodeTags(tags)
	return &p, nil
}

func (r *Repo) SaveProfile(ctx context.Context, p *catalog.Profile) error {
	tags, err := marshalList(p.Tags)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO individual_profiles (user_id, username, tags) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username, tags = EXCLUDED.tags`,
		p.UserID, p.Username, tags)
	return err
}

func (r *Repo) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
	}
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrg(rs rowScanner) (*catalog.Organization, error) {
	var (
		o      catalog.Organization
		tags   []byte
		events []byte
	)
	if err := rs.Scan(&o.ID, &o.OwnerID, &o.Name, &o.Slug, &o.Description, &tags, &events, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Tags = decodeTags(tags)
	o.Events = decodeEvents(events)
	return &o, nil
}

// decodeTags tolerates rows written by other clients: non-string entries are dropped.
func decodeTags(b []byte) []string {
	var raw any
	if len(b) == 0 || json.Unmarshal(b, &raw) != nil {
		return []string{}
	}
	return catalog.NormalizeTags(raw)
}

func decodeEvents(b []byte) []catalog.Event {
	var raw []map[string]any
	if len(b) == 0 || json.Unmarshal(b, &raw) != nil {
		return []catalog.Event{}
	}
	out := make([]catalog.Event, 0, len(raw))
	for _, m := range raw {
		out = append(out, catalog.Event{
			ID:          str(m["id"]),
			Title:       str(m["title"]),
			Description: str(m["description"]),
			Date:        str(m["date"]),
			Tags:        catalog.NormalizeTags(m["tags"]),
			CreatedAt:   str(m["created_at"]),
		})
	}
	return out
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func marshalList(v []string) ([]byte, error) {
	if v == nil {
		v = []string{}
	}
	return json.Marshal(v)
}

func orEmptyEvents(v []catalog.Event) []catalog.Event {
	if v == nil {
		return []catalog.Event{}
	}
	return v
}

func placeholder(n int) string {
	return "$" + fmt.Sprint(n)
}
