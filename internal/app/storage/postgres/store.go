// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/commercegrid/backoffice/internal/app/domain/catalog"
	"github.com/commercegrid/backoffice/internal/app/domain/group"
	"github.com/commercegrid/backoffice/internal/app/domain/pricing"
	"github.com/commercegrid/backoffice/internal/app/domain/region"
	"github.com/commercegrid/backoffice/internal/app/domain/user"
	"github.com/commercegrid/backoffice/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.GroupStore = (*Store)(nil)
var _ storage.RegionStore = (*Store)(nil)
var _ storage.PricingStore = (*Store)(nil)
var _ storage.CatalogStore = (*Store)(nil)
var _ storage.PublicationStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO backoffice_users (id, email, display_name, password_hash, role, status, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Email, u.DisplayName, u.PasswordHash, u.Role, u.Status, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	existing, err := s.GetUser(ctx, u.ID)
	if err != nil {
		return user.User{}, err
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE backoffice_users
		SET email = lower($2), display_name = $3, password_hash = $4, role = $5, status = $6, updated_at = $7
		WHERE id = $1
	`, u.ID, u.Email, u.DisplayName, u.PasswordHash, u.Role, u.Status, u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, role, status, created_at, updated_at
		FROM backoffice_users
		WHERE id = $1
	`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, role, status, created_at, updated_at
		FROM backoffice_users
		WHERE email = lower($1)
	`, email))
}

func (s *Store) scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, notFound(err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, display_name, password_hash, role, status, created_at, updated_at
		FROM backoffice_users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM backoffice_users WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- GroupStore -------------------------------------------------------------

func (s *Store) CreateGroup(ctx context.Context, g group.Group) (group.Group, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO backoffice_groups (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, g.ID, g.Name, g.Description, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return group.Group{}, err
	}
	return g, nil
}

func (s *Store) UpdateGroup(ctx context.Context, g group.Group) (group.Group, error) {
	existing, err := s.GetGroup(ctx, g.ID)
	if err != nil {
		return group.Group{}, err
	}

	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE backoffice_groups
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`, g.ID, g.Name, g.Description, g.UpdatedAt)
	if err != nil {
		return group.Group{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return group.Group{}, storage.ErrNotFound
	}
	return g, nil
}

func (s *Store) GetGroup(ctx context.Context, id string) (group.Group, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM backoffice_groups
		WHERE id = $1
	`, id)

	var g group.Group
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return group.Group{}, notFound(err)
	}
	return g, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]group.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM backoffice_groups
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []group.Group
	for rows.Next() {
		var g group.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM backoffice_groups WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) AddMembership(ctx context.Context, m group.Membership) (group.Membership, error) {
	m.AddedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO backoffice_group_members (group_id, user_id, added_by, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, m.GroupID, m.UserID, m.AddedBy, m.AddedAt)
	if err != nil {
		return group.Membership{}, err
	}
	return m, nil
}

func (s *Store) RemoveMembership(ctx context.Context, groupID, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM backoffice_group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ListMemberships(ctx context.Context, groupID string) ([]group.Membership, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_id, user_id, added_by, added_at
		FROM backoffice_group_members
		WHERE group_id = $1
		ORDER BY added_at
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []group.Membership
	for rows.Next() {
		var m group.Membership
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.AddedBy, &m.AddedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// --- RegionStore ------------------------------------------------------------

func (s *Store) CreateRegion(ctx context.Context, r region.Region) (region.Region, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO backoffice_regions (id, code, name, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.ID, r.Code, r.Name, r.Currency, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return region.Region{}, err
	}
	return r, nil
}

func (s *Store) UpdateRegion(ctx context.Context, r region.Region) (region.Region, error) {
	existing, err := s.GetRegion(ctx, r.ID)
	if err != nil {
		return region.Region{}, err
	}

	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE backoffice_regions
		SET code = $2, name = $3, currency = $4, updated_at = $5
		WHERE id = $1
	`, r.ID, r.Code, r.Name, r.Currency, r.UpdatedAt)
	if err != nil {
		return region.Region{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return region.Region{}, storage.ErrNotFound
	}
	return r, nil
}

func (s *Store) GetRegion(ctx context.Context, id string) (region.Region, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, currency, created_at, updated_at
		FROM backoffice_regions
		WHERE id = $1
	`, id)

	var r region.Region
	if err := row.Scan(&r.ID, &r.Code, &r.Name, &r.Currency, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return region.Region{}, notFound(err)
	}
	return r, nil
}

func (s *Store) ListRegions(ctx context.Context) ([]region.Region, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, currency, created_at, updated_at
		FROM backoffice_regions
		ORDER BY code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []region.Region
	for rows.Next() {
		var r region.Region
		if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.Currency, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *Store) DeleteRegion(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM backoffice_regions WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- PricingStore -----------------------------------------------------------

func (s *Store) UpsertPrice(ctx context.Context, p pricing.Price) (pricing.Price, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.UpdatedAt = now

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO backoffice_prices (id, product_id, region_id, currency, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (product_id, region_id)
		DO UPDATE SET currency = EXCLUDED.currency, amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, p.ID, p.ProductID, p.RegionID, p.Currency, p.Amount, now)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return pricing.Price{}, err
	}
	return p, nil
}

func (s *Store) ListPrices(ctx context.Context, productID string) ([]pricing.Price, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, region_id, currency, amount, created_at, updated_at
		FROM backoffice_prices
		WHERE product_id = $1
		ORDER BY region_id
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []pricing.Price
	for rows.Next() {
		var p pricing.Price
		if err := rows.Scan(&p.ID, &p.ProductID, &p.RegionID, &p.Currency, &p.Amount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) DeletePrice(ctx context.Context, productID, regionID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM backoffice_prices WHERE product_id = $1 AND region_id = $2
	`, productID, regionID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- CatalogStore: sections -------------------------------------------------

func (s *Store) CreateSection(ctx context.Context, sec catalog.Section) (catalog.Section, error) {
	if sec.ID == "" {
		sec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sec.CreatedAt = now
	sec.UpdatedAt = now

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO catalog_sections (id, name, slug, position, created_at, updated_at)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position) + 1, 0) FROM catalog_sections), $4, $5)
		RETURNING position
	`, sec.ID, sec.Name, sec.Slug, sec.CreatedAt, sec.UpdatedAt)
	if err := row.Scan(&sec.Position); err != nil {
		return catalog.Section{}, err
	}
	return sec, nil
}

func (s *Store) UpdateSection(ctx context.Context, sec catalog.Section) (catalog.Section, error) {
	existing, err := s.GetSection(ctx, sec.ID)
	if err != nil {
		return catalog.Section{}, err
	}

	sec.Position = existing.Position
	sec.CreatedAt = existing.CreatedAt
	sec.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE catalog_sections
		SET name = $2, slug = $3, updated_at = $4
		WHERE id = $1
	`, sec.ID, sec.Name, sec.Slug, sec.UpdatedAt)
	if err != nil {
		return catalog.Section{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return catalog.Section{}, storage.ErrNotFound
	}
	return sec, nil
}

func (s *Store) GetSection(ctx context.Context, id string) (catalog.Section, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, position, created_at, updated_at
		FROM catalog_sections
		WHERE id = $1
	`, id)

	var sec catalog.Section
	if err := row.Scan(&sec.ID, &sec.Name, &sec.Slug, &sec.Position, &sec.CreatedAt, &sec.UpdatedAt); err != nil {
		return catalog.Section{}, notFound(err)
	}
	return sec, nil
}

func (s *Store) ListSections(ctx context.Context) ([]catalog.Section, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug, position, created_at, updated_at
		FROM catalog_sections
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Section
	for rows.Next() {
		var sec catalog.Section
		if err := rows.Scan(&sec.ID, &sec.Name, &sec.Slug, &sec.Position, &sec.CreatedAt, &sec.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, sec)
	}
	return result, rows.Err()
}

// DeleteSection removes the section, its mapping rows and the position gap
// it leaves among siblings, then refreshes the published flag of every item
// that was mapped into it. One transaction keeps readers consistent.
func (s *Store) DeleteSection(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var position int
	if err := tx.QueryRowContext(ctx, `
		DELETE FROM catalog_sections WHERE id = $1 RETURNING position
	`, id).Scan(&position); err != nil {
		return notFound(err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE catalog_sections SET position = position - 1 WHERE position > $1
	`, position); err != nil {
		return err
	}

	for _, kind := range []catalog.ItemKind{catalog.KindProduct, catalog.KindService} {
		tables := tablesByKind[kind]
		orphaned, err := collectIDs(tx.QueryContext(ctx, fmt.Sprintf(`
			DELETE FROM %s WHERE section_id = $1 RETURNING %s
		`, tables.mapTable, tables.itemCol), id))
		if err != nil {
			return err
		}
		if err := recomputePublished(ctx, tx, kind, orphaned); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) ReorderSections(ctx context.Context, orderedIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_sections`).Scan(&total); err != nil {
		return err
	}
	if total != len(orderedIDs) {
		return fmt.Errorf("reorder list has %d entries, store has %d sections", len(orderedIDs), total)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE catalog_sections s
		SET position = u.ord - 1, updated_at = $2
		FROM unnest($1::text[]) WITH ORDINALITY AS u(id, ord)
		WHERE s.id = u.id
	`, pq.Array(orderedIDs), time.Now().UTC())
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows != int64(len(orderedIDs)) {
		return storage.ErrNotFound
	}

	return tx.Commit()
}

// --- CatalogStore: products -------------------------------------------------

func (s *Store) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Published = false

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_products (id, sku, name, description, status, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)
	`, p.ID, p.SKU, p.Name, p.Description, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	existing, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return catalog.Product{}, err
	}

	p.Published = existing.Published
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE catalog_products
		SET sku = $2, name = $3, description = $4, status = $5, updated_at = $6
		WHERE id = $1
	`, p.ID, p.SKU, p.Name, p.Description, p.Status, p.UpdatedAt)
	if err != nil {
		return catalog.Product{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return catalog.Product{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sku, name, description, status, is_published, created_at, updated_at
		FROM catalog_products
		WHERE id = $1
	`, id)

	var p catalog.Product
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Status, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return catalog.Product{}, notFound(err)
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sku, name, description, status, is_published, created_at, updated_at
		FROM catalog_products
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Status, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return s.deleteItem(ctx, catalog.KindProduct, id)
}

// --- CatalogStore: services -------------------------------------------------

func (s *Store) CreateService(ctx context.Context, svc catalog.Service) (catalog.Service, error) {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	svc.Published = false

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_services (id, name, description, status, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6)
	`, svc.ID, svc.Name, svc.Description, svc.Status, svc.CreatedAt, svc.UpdatedAt)
	if err != nil {
		return catalog.Service{}, err
	}
	return svc, nil
}

func (s *Store) UpdateService(ctx context.Context, svc catalog.Service) (catalog.Service, error) {
	existing, err := s.GetService(ctx, svc.ID)
	if err != nil {
		return catalog.Service{}, err
	}

	svc.Published = existing.Published
	svc.CreatedAt = existing.CreatedAt
	svc.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE catalog_services
		SET name = $2, description = $3, status = $4, updated_at = $5
		WHERE id = $1
	`, svc.ID, svc.Name, svc.Description, svc.Status, svc.UpdatedAt)
	if err != nil {
		return catalog.Service{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return catalog.Service{}, storage.ErrNotFound
	}
	return svc, nil
}

func (s *Store) GetService(ctx context.Context, id string) (catalog.Service, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, status, is_published, created_at, updated_at
		FROM catalog_services
		WHERE id = $1
	`, id)

	var svc catalog.Service
	if err := row.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.Status, &svc.Published, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
		return catalog.Service{}, notFound(err)
	}
	return svc, nil
}

func (s *Store) ListServices(ctx context.Context) ([]catalog.Service, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, status, is_published, created_at, updated_at
		FROM catalog_services
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Service
	for rows.Next() {
		var svc catalog.Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.Status, &svc.Published, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	return s.deleteItem(ctx, catalog.KindService, id)
}

// deleteItem removes a publishable item together with its mapping rows,
// compacting the position sequence of every section it was mapped into.
func (s *Store) deleteItem(ctx context.Context, kind catalog.ItemKind, id string) error {
	tables := tablesByKind[kind]

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	touched, err := collectIDs(tx.QueryContext(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE %s = $1 RETURNING section_id
	`, tables.mapTable, tables.itemCol), id))
	if err != nil {
		return err
	}
	for _, sectionID := range touched {
		if err := compactSection(ctx, tx, kind, sectionID); err != nil {
			return err
		}
	}

	result, err := tx.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1
	`, tables.itemTable), id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}

	return tx.Commit()
}

func (s *Store) ListSectionMappings(ctx context.Context, kind catalog.ItemKind, sectionID string) ([]catalog.Mapping, error) {
	tables := tablesByKind[kind]

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s, section_id, position, published_by, created_at
		FROM %s
		WHERE section_id = $1
		ORDER BY position
	`, tables.itemCol, tables.mapTable), sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Mapping
	for rows.Next() {
		var m catalog.Mapping
		if err := rows.Scan(&m.ItemID, &m.SectionID, &m.Position, &m.PublishedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func collectIDs(rows *sql.Rows, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
