package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"

	"github.com/commercegrid/backoffice/internal/app/domain/catalog"
	"github.com/commercegrid/backoffice/internal/app/storage"
)

// tableSet names the tables a mapping operation touches for one item kind.
type tableSet struct {
	itemTable string
	mapTable  string
	itemCol   string
}

var tablesByKind = map[catalog.ItemKind]tableSet{
	catalog.KindProduct: {
		itemTable: "catalog_products",
		mapTable:  "catalog_section_products",
		itemCol:   "product_id",
	},
	catalog.KindService: {
		itemTable: "catalog_services",
		mapTable:  "catalog_section_services",
		itemCol:   "service_id",
	},
}

// dbtx is the subset of *sql.DB / *sql.Tx the mapping statements need.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// publicationTx wraps one database transaction over the mapping tables.
// Callers lock every section they will touch up front (LockSections), so
// concurrent mutations of the same section serialise before either side
// reads the pairs or MAX(position) that feed its writes. The mutation
// methods re-take the lock as a safety net for direct store users.
type publicationTx struct {
	tx     *sql.Tx
	locked map[string]struct{}
}

var _ storage.PublicationTx = (*publicationTx)(nil)

// BeginPublication opens a mapping transaction.
func (s *Store) BeginPublication(ctx context.Context) (storage.PublicationTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &publicationTx{tx: tx, locked: make(map[string]struct{})}, nil
}

// LockSections takes the advisory locks in sorted order so two transactions
// touching overlapping section sets cannot deadlock on lock order.
func (p *publicationTx) LockSections(ctx context.Context, kind catalog.ItemKind, sectionIDs []string) error {
	ordered := append([]string(nil), sectionIDs...)
	sort.Strings(ordered)
	for _, sectionID := range ordered {
		if err := p.lockSection(ctx, kind, sectionID); err != nil {
			return err
		}
	}
	return nil
}

func (p *publicationTx) lockSection(ctx context.Context, kind catalog.ItemKind, sectionID string) error {
	key := string(kind) + ":" + sectionID
	if _, ok := p.locked[key]; ok {
		return nil
	}
	if _, err := p.tx.ExecContext(ctx, `
		SELECT pg_advisory_xact_lock(hashtextextended($1, 0))
	`, key); err != nil {
		return err
	}
	p.locked[key] = struct{}{}
	return nil
}

func (p *publicationTx) ItemStatuses(ctx context.Context, kind catalog.ItemKind, ids []string) (map[string]catalog.ItemStatus, error) {
	tables := tablesByKind[kind]

	rows, err := p.tx.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, status FROM %s WHERE id = ANY($1)
	`, tables.itemTable), pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]catalog.ItemStatus, len(ids))
	for rows.Next() {
		var (
			id     string
			status catalog.ItemStatus
		)
		if err := rows.Scan(&id, &status); err != nil {
			return nil, err
		}
		result[id] = status
	}
	return result, rows.Err()
}

func (p *publicationTx) ExistingSections(ctx context.Context, ids []string) (map[string]bool, error) {
	rows, err := p.tx.QueryContext(ctx, `
		SELECT id FROM catalog_sections WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = true
	}
	return result, rows.Err()
}

func (p *publicationTx) ExistingPairs(ctx context.Context, kind catalog.ItemKind, itemIDs, sectionIDs []string) (map[catalog.Pair]struct{}, error) {
	tables := tablesByKind[kind]

	rows, err := p.tx.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s, section_id FROM %s
		WHERE %s = ANY($1) AND section_id = ANY($2)
	`, tables.itemCol, tables.mapTable, tables.itemCol), pq.Array(itemIDs), pq.Array(sectionIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[catalog.Pair]struct{})
	for rows.Next() {
		var pair catalog.Pair
		if err := rows.Scan(&pair.ItemID, &pair.SectionID); err != nil {
			return nil, err
		}
		result[pair] = struct{}{}
	}
	return result, rows.Err()
}

func (p *publicationTx) SectionItems(ctx context.Context, kind catalog.ItemKind, sectionID string) ([]string, error) {
	tables := tablesByKind[kind]
	return collectIDs(p.tx.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM %s WHERE section_id = $1 ORDER BY position
	`, tables.itemCol, tables.mapTable), sectionID))
}

// AppendMappings inserts itemIDs at the tail of the section's sequence in
// one batched statement: position = current max + ordinality offset.
func (p *publicationTx) AppendMappings(ctx context.Context, kind catalog.ItemKind, sectionID string, itemIDs []string, publishedBy string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	if err := p.lockSection(ctx, kind, sectionID); err != nil {
		return err
	}
	tables := tablesByKind[kind]

	_, err := p.tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s, section_id, position, published_by, created_at)
		SELECT u.item_id, $1,
		       (SELECT COALESCE(MAX(position) + 1, 0) FROM %s WHERE section_id = $1) + u.ord - 1,
		       $2, $3
		FROM unnest($4::text[]) WITH ORDINALITY AS u(item_id, ord)
		ON CONFLICT (%s, section_id) DO NOTHING
	`, tables.mapTable, tables.itemCol, tables.mapTable, tables.itemCol),
		sectionID, publishedBy, time.Now().UTC(), pq.Array(itemIDs))
	return err
}

// RemoveMappings deletes the pairs and renumbers the survivors in one
// window-function update, restoring the dense 0..k-1 sequence.
func (p *publicationTx) RemoveMappings(ctx context.Context, kind catalog.ItemKind, sectionID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	if err := p.lockSection(ctx, kind, sectionID); err != nil {
		return err
	}
	tables := tablesByKind[kind]

	if _, err := p.tx.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE section_id = $1 AND %s = ANY($2)
	`, tables.mapTable, tables.itemCol), sectionID, pq.Array(itemIDs)); err != nil {
		return err
	}
	return compactSection(ctx, p.tx, kind, sectionID)
}

// ReplaceSection clears the section and reinserts itemIDs with positions
// 0..n-1 in caller order.
func (p *publicationTx) ReplaceSection(ctx context.Context, kind catalog.ItemKind, sectionID string, itemIDs []string, publishedBy string) error {
	if err := p.lockSection(ctx, kind, sectionID); err != nil {
		return err
	}
	tables := tablesByKind[kind]

	if _, err := p.tx.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE section_id = $1
	`, tables.mapTable), sectionID); err != nil {
		return err
	}
	if len(itemIDs) == 0 {
		return nil
	}

	_, err := p.tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s, section_id, position, published_by, created_at)
		SELECT u.item_id, $1, u.ord - 1, $2, $3
		FROM unnest($4::text[]) WITH ORDINALITY AS u(item_id, ord)
	`, tables.mapTable, tables.itemCol),
		sectionID, publishedBy, time.Now().UTC(), pq.Array(itemIDs))
	return err
}

func (p *publicationTx) RecomputePublished(ctx context.Context, kind catalog.ItemKind, itemIDs []string) error {
	return recomputePublished(ctx, p.tx, kind, itemIDs)
}

func (p *publicationTx) Commit() error {
	return p.tx.Commit()
}

func (p *publicationTx) Rollback() error {
	if err := p.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// compactSection renumbers a section's mappings to 0..k-1 preserving their
// relative order.
func compactSection(ctx context.Context, q dbtx, kind catalog.ItemKind, sectionID string) error {
	tables := tablesByKind[kind]

	_, err := q.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s m
		SET position = r.rn - 1
		FROM (
			SELECT %s AS item_id, ROW_NUMBER() OVER (ORDER BY position) AS rn
			FROM %s WHERE section_id = $1
		) r
		WHERE m.section_id = $1 AND m.%s = r.item_id
	`, tables.mapTable, tables.itemCol, tables.mapTable, tables.itemCol), sectionID)
	return err
}

// recomputePublished refreshes the derived flag for the given items: true
// iff at least one mapping row references the item.
func recomputePublished(ctx context.Context, q dbtx, kind catalog.ItemKind, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	tables := tablesByKind[kind]

	_, err := q.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s i
		SET is_published = EXISTS (SELECT 1 FROM %s m WHERE m.%s = i.id),
		    updated_at = $2
		WHERE i.id = ANY($1)
	`, tables.itemTable, tables.mapTable, tables.itemCol), pq.Array(itemIDs), time.Now().UTC())
	return err
}
