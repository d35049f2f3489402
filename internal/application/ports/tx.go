package ports

import (
	"context"

	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ningún efecto parcial es observable.
type TxRunner interface {
	Run(ctx context.Context, fn func(r repository.Repos) error) error
}
