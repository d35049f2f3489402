// Package memory implementa todos los puertos de repositorio en memoria. Cada comando corre
// serializado sobre una copia de seguridad del estado que se restaura si el comando falla,
// con las mismas restricciones UNIQUE y FK que el esquema PostgreSQL.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

// Store estado en memoria del motor. Implementa ports.TxRunner.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState()}
}

// Repos vista fuera de transacción: cada método toma el lock del store.
func (s *Store) Repos() repository.Repos {
	return s.repos(false)
}

// Run ejecuta fn como un comando atómico: si fn devuelve error (o entra en pánico) el
// estado vuelve al previo al comando.
func (s *Store) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.ErrTimeout.Wrap(err)
		}
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.st.clone()
	committed := false
	defer func() {
		if !committed {
			s.st = snap
		}
	}()
	if err := fn(s.repos(true)); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) repos(inTx bool) repository.Repos {
	b := &base{s: s, inTx: inTx}
	return repository.Repos{
		Items:        &itemRepo{b},
		Stock:        &stockRepo{b},
		Purchases:    &purchaseRepo{b},
		Sales:        &saleRepo{b},
		Plans:        &planRepo{b},
		Appointments: &appointmentRepo{b},
		Receipts:     &receiptRepo{b},
		Cash:         &cashRepo{b},
		Audit:        &auditRepo{b},
		Accounts:     &accountRepo{b},
		Users:        &userRepo{b},
		Reports:      &reportRepo{b},
	}
}

// base da acceso al estado; fuera de transacción toma el lock en cada llamada.
type base struct {
	s    *Store
	inTx bool
}

func (b *base) read(fn func(st *state) error) error {
	if !b.inTx {
		b.s.mu.RLock()
		defer b.s.mu.RUnlock()
	}
	return fn(b.s.st)
}

func (b *base) write(fn func(st *state) error) error {
	if !b.inTx {
		b.s.mu.Lock()
		defer b.s.mu.Unlock()
	}
	return fn(b.s.st)
}

// table filas de una entidad indexadas por id, con secuencia monótona.
type table[T any] struct {
	rows map[int64]*T
	seq  int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int64]*T)}
}

func (t *table[T]) next() int64 {
	t.seq++
	return t.seq
}

// get devuelve una copia de la fila o nil.
func (t *table[T]) get(id int64) *T {
	r, ok := t.rows[id]
	if !ok {
		return nil
	}
	c := *r
	return &c
}

func (t *table[T]) has(id int64) bool {
	_, ok := t.rows[id]
	return ok
}

func (t *table[T]) put(id int64, v *T) {
	c := *v
	t.rows[id] = &c
}

// all copias de todas las filas en orden de id.
func (t *table[T]) all() []*T {
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.get(id))
	}
	return out
}

// filter copias de las filas que cumplen keep, en orden de id.
func (t *table[T]) filter(keep func(*T) bool) []*T {
	var out []*T
	for _, r := range t.all() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (t *table[T]) clone() *table[T] {
	c := &table[T]{rows: make(map[int64]*T, len(t.rows)), seq: t.seq}
	for id, r := range t.rows {
		v := *r
		c.rows[id] = &v
	}
	return c
}

type state struct {
	itemTypes     *table[entity.ItemType]
	planTypes     *table[entity.PlanType]
	items         *table[entity.Item]
	compositions  map[int64][]entity.CompositionLine
	movements     *table[entity.StockMovement]
	purchases     *table[entity.Purchase]
	purchaseLines *table[entity.PurchaseLine]
	sales         *table[entity.Sale]
	saleLines     *table[entity.SaleLine]
	plans         *table[entity.SessionPlan]
	sessions      *table[entity.PlanSession]
	appointments  *table[entity.Appointment]
	receipts      *table[entity.Receipt]
	imputations   []entity.ReceiptImputation
	cashSessions  *table[entity.CashSession]
	cashMovements *table[entity.CashMovement]
	audit         *table[entity.AuditEntry]
	patients      *table[entity.Patient]
	professionals *table[entity.Professional]
	suppliers     *table[entity.Supplier]
	clinics       *table[entity.Clinic]
	departments   *table[entity.Department]
	cities        *table[entity.City]
	users         *table[entity.User]
}

func newState() *state {
	return &state{
		itemTypes:     newTable[entity.ItemType](),
		planTypes:     newTable[entity.PlanType](),
		items:         newTable[entity.Item](),
		compositions:  make(map[int64][]entity.CompositionLine),
		movements:     newTable[entity.StockMovement](),
		purchases:     newTable[entity.Purchase](),
		purchaseLines: newTable[entity.PurchaseLine](),
		sales:         newTable[entity.Sale](),
		saleLines:     newTable[entity.SaleLine](),
		plans:         newTable[entity.SessionPlan](),
		sessions:      newTable[entity.PlanSession](),
		appointments:  newTable[entity.Appointment](),
		receipts:      newTable[entity.Receipt](),
		cashSessions:  newTable[entity.CashSession](),
		cashMovements: newTable[entity.CashMovement](),
		audit:         newTable[entity.AuditEntry](),
		patients:      newTable[entity.Patient](),
		professionals: newTable[entity.Professional](),
		suppliers:     newTable[entity.Supplier](),
		clinics:       newTable[entity.Clinic](),
		departments:   newTable[entity.Department](),
		cities:        newTable[entity.City](),
		users:         newTable[entity.User](),
	}
}

func (s *state) clone() *state {
	c := &state{
		itemTypes:     s.itemTypes.clone(),
		planTypes:     s.planTypes.clone(),
		items:         s.items.clone(),
		compositions:  make(map[int64][]entity.CompositionLine, len(s.compositions)),
		movements:     s.movements.clone(),
		purchases:     s.purchases.clone(),
		purchaseLines: s.purchaseLines.clone(),
		sales:         s.sales.clone(),
		saleLines:     s.saleLines.clone(),
		plans:         s.plans.clone(),
		sessions:      s.sessions.clone(),
		appointments:  s.appointments.clone(),
		receipts:      s.receipts.clone(),
		imputations:   append([]entity.ReceiptImputation(nil), s.imputations...),
		cashSessions:  s.cashSessions.clone(),
		cashMovements: s.cashMovements.clone(),
		audit:         s.audit.clone(),
		patients:      s.patients.clone(),
		professionals: s.professionals.clone(),
		suppliers:     s.suppliers.clone(),
		clinics:       s.clinics.clone(),
		departments:   s.departments.clone(),
		cities:        s.cities.clone(),
		users:         s.users.clone(),
	}
	for id, lines := range s.compositions {
		c.compositions[id] = append([]entity.CompositionLine(nil), lines...)
	}
	return c
}

// page aplica limit/offset a un listado ya ordenado.
func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func integrity(format string, args ...any) error {
	return domain.ErrIntegrity.WithMessage(format, args...)
}

func missing(entityName string, id int64) error {
	return domain.ErrNotFound.WithMessage("%s %d not found", entityName, id)
}

func fk(entityName string, id int64) error {
	return integrity("foreign key violation: %s %d does not exist", entityName, id)
}
