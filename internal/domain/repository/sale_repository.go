package repository

import (
	"context"
	"time"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// SaleFilter filtros de listado de ventas.
type SaleFilter struct {
	PatientID *int64
	State     string
	From, To  *time.Time
	Limit     int
	Offset    int
}

// SaleRepository puerto de persistencia de ventas y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, s *entity.Sale) error
	CreateLine(ctx context.Context, l *entity.SaleLine) error
	GetByID(ctx context.Context, id int64) (*entity.Sale, error)
	// GetForUpdate bloquea la fila de la venta (saldo) durante imputaciones y anulaciones.
	GetForUpdate(ctx context.Context, id int64) (*entity.Sale, error)
	Update(ctx context.Context, s *entity.Sale) error
	GetLines(ctx context.Context, saleID int64) ([]*entity.SaleLine, error)
	// ListOutstandingForUpdate ventas Confirmed con saldo > 0 del paciente, bloqueadas en
	// orden de id (el orden FIFO por fecha lo aplica el llamador).
	ListOutstandingForUpdate(ctx context.Context, patientID int64) ([]*entity.Sale, error)
	List(ctx context.Context, f SaleFilter) ([]*entity.Sale, error)
}
