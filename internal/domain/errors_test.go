package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/clinica-api/internal/domain"
)

func TestError_IsMatchesKindSentinel(t *testing.T) {
	err := fmt.Errorf("void sale: %w", domain.ErrHasActiveReceipts)

	assert.True(t, errors.Is(err, domain.ErrConflict), "un error específico debe hacer match con su clase")
	assert.True(t, errors.Is(err, domain.ErrHasActiveReceipts), "y también con su propio código")
	assert.False(t, errors.Is(err, domain.ErrValidation))
	assert.False(t, errors.Is(err, domain.ErrSaleAlreadyVoided), "códigos distintos de la misma clase no hacen match")
}

func TestError_WithMessageKeepsCode(t *testing.T) {
	err := domain.ErrAmountExceedsBalance.WithMessage("sale %d: %s > %s", 7, "120", "100")

	assert.True(t, errors.Is(err, domain.ErrAmountExceedsBalance))
	assert.Equal(t, "AMOUNT_EXCEEDS_BALANCE", domain.CodeOf(err))
	assert.Contains(t, err.Error(), "sale 7")
}

func TestError_WrapUnwrapsCause(t *testing.T) {
	err := domain.ErrTimeout.Wrap(context.DeadlineExceeded)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
}

func TestKindOf_NonDomainErrorIsInternal(t *testing.T) {
	assert.Equal(t, domain.KindInternal, domain.KindOf(errors.New("boom")))
	assert.Equal(t, "INTERNAL", domain.CodeOf(errors.New("boom")))
}
