package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del catálogo sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// El kind se lee siempre del tipo: el FK es la fuente de verdad.
const itemSelect = `
	SELECT i.id, i.name, i.search_key, i.barcode, i.item_type_id, t.kind, i.unit_price, i.cost,
	       i.generates_stock, i.plan_type_id, i.sessions_included, i.active, i.created_at, i.updated_at
	FROM items i
	JOIN item_types t ON t.id = i.item_type_id`

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(
		&it.ID, &it.Name, &it.SearchKey, &it.Barcode, &it.TypeID, &it.Kind, &it.UnitPrice, &it.Cost,
		&it.GeneratesStock, &it.PlanTypeID, &it.SessionsIncluded, &it.Active, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un ítem nuevo.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (name, search_key, barcode, item_type_id, unit_price, cost, generates_stock,
		                   plan_type_id, sessions_included, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		item.Name, item.SearchKey, item.Barcode, item.TypeID, item.UnitPrice, item.Cost, item.GeneratesStock,
		item.PlanTypeID, item.SessionsIncluded, item.Active, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	return mapError("insert item", err)
}

// Update modifica los atributos del ítem (el costo promedio va por UpdateCost).
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, search_key = $3, barcode = $4, item_type_id = $5, unit_price = $6,
		       generates_stock = $7, plan_type_id = $8, sessions_included = $9, active = $10, updated_at = $11
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.SearchKey, item.Barcode, item.TypeID, item.UnitPrice,
		item.GeneratesStock, item.PlanTypeID, item.SessionsIncluded, item.Active, item.UpdatedAt,
	)
	if err != nil {
		return mapError("update item", err)
	}
	return affected(tag, "item", item.ID)
}

// GetByID obtiene un ítem por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id int64) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, itemSelect+` WHERE i.id = $1`, id))
	return noRows(it, "get item", err)
}

// GetForUpdate obtiene el ítem bloqueando su fila.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, itemSelect+` WHERE i.id = $1 FOR UPDATE OF i`, id))
	return noRows(it, "get item for update", err)
}

// GetByBarcode obtiene un ítem por código de barras.
func (r *ItemRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, itemSelect+` WHERE i.barcode = $1`, barcode))
	return noRows(it, "get item by barcode", err)
}

// List lista ítems filtrando por clave de búsqueda normalizada, clase y estado.
func (r *ItemRepo) List(ctx context.Context, f repository.ItemFilter) ([]*entity.Item, error) {
	query := itemSelect + `
		WHERE ($1 = '' OR i.search_key LIKE '%' || $1 || '%')
		  AND ($2 = '' OR t.kind = $2)
		  AND (NOT $3 OR i.active)
		ORDER BY i.search_key, i.id
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, f.Search, f.Kind, f.OnlyActive, limitArg(f.Limit), f.Offset)
	if err != nil {
		return nil, mapError("list items", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, it)
	}
	return list, mapError("list items", rows.Err())
}

// UpdateCost actualiza solo el costo promedio ponderado.
func (r *ItemRepo) UpdateCost(ctx context.Context, id int64, cost decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE items SET cost = $2 WHERE id = $1`, id, cost)
	if err != nil {
		return mapError("update item cost", err)
	}
	return affected(tag, "item", id)
}

// Delete borra el ítem y su receta. Las referencias restantes fallan por FK (INTEGRITY).
func (r *ItemRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM item_compositions WHERE parent_id = $1`, id); err != nil {
		return mapError("delete item composition", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return mapError("delete item", err)
	}
	return affected(tag, "item", id)
}

// IsReferenced indica si algún documento, movimiento, receta, turno o plan usa el ítem.
func (r *ItemRepo) IsReferenced(ctx context.Context, id int64) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM stock_movements WHERE item_id = $1)
		    OR EXISTS (SELECT 1 FROM sale_lines WHERE item_id = $1)
		    OR EXISTS (SELECT 1 FROM purchase_lines WHERE item_id = $1)
		    OR EXISTS (SELECT 1 FROM item_compositions WHERE component_id = $1)
		    OR EXISTS (SELECT 1 FROM appointments WHERE item_id = $1)
		    OR EXISTS (SELECT 1 FROM session_plans WHERE item_id = $1)`
	var ref bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&ref); err != nil {
		return false, mapError("item references", err)
	}
	return ref, nil
}

// GetComposition receta del ítem en orden de componente.
func (r *ItemRepo) GetComposition(ctx context.Context, parentID int64) ([]entity.CompositionLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT parent_id, component_id, quantity FROM item_compositions
		WHERE parent_id = $1 ORDER BY component_id`, parentID)
	if err != nil {
		return nil, mapError("get composition", err)
	}
	defer rows.Close()
	var lines []entity.CompositionLine
	for rows.Next() {
		var l entity.CompositionLine
		if err := rows.Scan(&l.ParentID, &l.ComponentID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan composition: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, mapError("get composition", rows.Err())
}

// ReplaceComposition reemplaza la receta completa.
func (r *ItemRepo) ReplaceComposition(ctx context.Context, parentID int64, lines []entity.CompositionLine) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM item_compositions WHERE parent_id = $1`, parentID); err != nil {
		return mapError("clear composition", err)
	}
	for _, l := range lines {
		if _, err := r.q.Exec(ctx,
			`INSERT INTO item_compositions (parent_id, component_id, quantity) VALUES ($1, $2, $3)`,
			parentID, l.ComponentID, l.Quantity,
		); err != nil {
			return mapError("insert composition", err)
		}
	}
	return nil
}

// CreateItemType alta de tipo de ítem (nombre único sin distinguir mayúsculas).
func (r *ItemRepo) CreateItemType(ctx context.Context, t *entity.ItemType) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO item_types (name, kind) VALUES ($1, $2) RETURNING id`, t.Name, t.Kind,
	).Scan(&t.ID)
	return mapError("insert item type", err)
}

// GetItemType obtiene un tipo de ítem.
func (r *ItemRepo) GetItemType(ctx context.Context, id int64) (*entity.ItemType, error) {
	var t entity.ItemType
	err := r.q.QueryRow(ctx, `SELECT id, name, kind FROM item_types WHERE id = $1`, id).Scan(&t.ID, &t.Name, &t.Kind)
	return noRows(&t, "get item type", err)
}

// ListItemTypes lista los tipos de ítem por id.
func (r *ItemRepo) ListItemTypes(ctx context.Context) ([]*entity.ItemType, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, kind FROM item_types ORDER BY id`)
	if err != nil {
		return nil, mapError("list item types", err)
	}
	defer rows.Close()
	var list []*entity.ItemType
	for rows.Next() {
		var t entity.ItemType
		if err := rows.Scan(&t.ID, &t.Name, &t.Kind); err != nil {
			return nil, fmt.Errorf("scan item type: %w", err)
		}
		list = append(list, &t)
	}
	return list, mapError("list item types", rows.Err())
}

// CreatePlanType alta de tipo de plan.
func (r *ItemRepo) CreatePlanType(ctx context.Context, t *entity.PlanType) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO plan_types (name, default_sessions, active) VALUES ($1, $2, $3) RETURNING id`,
		t.Name, t.DefaultSessions, t.Active,
	).Scan(&t.ID)
	return mapError("insert plan type", err)
}

// GetPlanType obtiene un tipo de plan.
func (r *ItemRepo) GetPlanType(ctx context.Context, id int64) (*entity.PlanType, error) {
	var t entity.PlanType
	err := r.q.QueryRow(ctx,
		`SELECT id, name, default_sessions, active FROM plan_types WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.DefaultSessions, &t.Active)
	return noRows(&t, "get plan type", err)
}

// ListPlanTypes lista los tipos de plan por id.
func (r *ItemRepo) ListPlanTypes(ctx context.Context) ([]*entity.PlanType, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, default_sessions, active FROM plan_types ORDER BY id`)
	if err != nil {
		return nil, mapError("list plan types", err)
	}
	defer rows.Close()
	var list []*entity.PlanType
	for rows.Next() {
		var t entity.PlanType
		if err := rows.Scan(&t.ID, &t.Name, &t.DefaultSessions, &t.Active); err != nil {
			return nil, fmt.Errorf("scan plan type: %w", err)
		}
		list = append(list, &t)
	}
	return list, mapError("list plan types", rows.Err())
}
