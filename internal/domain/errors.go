package domain

import (
	"errors"
	"fmt"
)

// Kind clasifica los errores del motor (taxonomía estable para los colaboradores).
type Kind string

const (
	KindValidation    Kind = "VALIDATION"
	KindConflict      Kind = "CONFLICT"
	KindNotFound      Kind = "NOT_FOUND"
	KindIntegrity     Kind = "INTEGRITY"
	KindTimeout       Kind = "TIMEOUT"
	KindAuthorization Kind = "AUTHORIZATION"
	KindInternal      Kind = "INTERNAL"
)

// Error es el error tipado del dominio: código legible por máquina más un mensaje corto en inglés.
// Los sentinelas de clase (Code == Kind) hacen match con cualquier error de esa clase vía errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is permite errors.Is(err, domain.ErrConflict) y errors.Is(err, domain.ErrHasActiveReceipts).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == string(t.Kind) {
		return e.Kind == t.Kind
	}
	return e.Code == t.Code
}

// WithMessage devuelve una copia con mensaje específico (mantiene Kind y Code).
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Wrap devuelve una copia que envuelve la causa original.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: cause}
}

func newErr(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Validation construye un error de validación con código propio.
func Validation(code, msg string) *Error { return newErr(KindValidation, code, msg) }

// Conflict construye un error de transición de estado no permitida.
func Conflict(code, msg string) *Error { return newErr(KindConflict, code, msg) }

// NotFound construye un error de entidad inexistente.
func NotFound(code, msg string) *Error { return newErr(KindNotFound, code, msg) }

// Sentinelas de clase.
var (
	ErrValidation = newErr(KindValidation, string(KindValidation), "invalid input")
	ErrConflict   = newErr(KindConflict, string(KindConflict), "conflict with current state")
	ErrNotFound   = newErr(KindNotFound, string(KindNotFound), "resource not found")
	ErrIntegrity  = newErr(KindIntegrity, string(KindIntegrity), "storage invariant violated")
	ErrTimeout    = newErr(KindTimeout, string(KindTimeout), "statement or lock wait timed out")
	ErrForbidden  = newErr(KindAuthorization, string(KindAuthorization), "actor lacks the right for this operation")
)

// Alias conservados del API de inventario.
var (
	ErrInvalidInput = ErrValidation
	ErrUnauthorized = newErr(KindAuthorization, "INVALID_CREDENTIALS", "invalid credentials")
	ErrDuplicate    = newErr(KindConflict, "DUPLICATE", "duplicate resource")
)

// Errores específicos del motor.
var (
	ErrInsufficientStock      = newErr(KindConflict, "INSUFFICIENT_STOCK", "movement would leave stock negative")
	ErrItemNotStockTracked    = newErr(KindValidation, "ITEM_NOT_STOCK_TRACKED", "item does not track stock")
	ErrItemReferenced         = newErr(KindConflict, "ITEM_REFERENCED", "item is referenced and cannot be deleted")
	ErrPurchaseAlreadyVoided  = newErr(KindConflict, "PURCHASE_ALREADY_VOIDED", "purchase is already voided")
	ErrPurchasePaidFromCash   = newErr(KindConflict, "PURCHASE_PAID_FROM_CASH", "purchase was paid from petty cash")
	ErrSaleAlreadyVoided      = newErr(KindConflict, "SALE_ALREADY_VOIDED", "sale is already voided")
	ErrSaleNotVoidable        = newErr(KindConflict, "SALE_NOT_VOIDABLE", "sale cannot be voided from its current state")
	ErrHasActiveReceipts      = newErr(KindConflict, "HAS_ACTIVE_RECEIPTS", "sale has active receipt imputations")
	ErrSaleNotPayable         = newErr(KindConflict, "SALE_NOT_PAYABLE", "sale does not accept payments in its current state")
	ErrAmountExceedsBalance   = newErr(KindConflict, "AMOUNT_EXCEEDS_BALANCE", "imputed amount exceeds sale balance")
	ErrReceiptAlreadyVoided   = newErr(KindConflict, "RECEIPT_ALREADY_VOIDED", "receipt is already voided")
	ErrCashSessionAlreadyOpen = newErr(KindConflict, "CASH_SESSION_ALREADY_OPEN", "a cash session is already open")
	ErrNoOpenCashSession      = newErr(KindConflict, "NO_OPEN_CASH_SESSION", "there is no open cash session")
	ErrCashSessionClosed      = newErr(KindConflict, "CASH_SESSION_CLOSED", "cash session is closed")
	ErrPurchaseAlreadyPaid    = newErr(KindConflict, "PURCHASE_ALREADY_PAID", "purchase was already paid from petty cash")
	ErrPurchaseVoided         = newErr(KindConflict, "PURCHASE_VOIDED", "purchase is voided")
	ErrSessionAlreadyComplete = newErr(KindConflict, "SESSION_ALREADY_COMPLETED", "plan session is already completed")
	ErrSessionCancelled       = newErr(KindConflict, "SESSION_CANCELLED", "plan session is cancelled")
	ErrSessionAlreadyLinked   = newErr(KindConflict, "SESSION_ALREADY_LINKED", "plan session is already linked to an appointment")
	ErrPlanNotActive          = newErr(KindConflict, "PLAN_NOT_ACTIVE", "session plan is not active")
	ErrAppointmentClosed      = newErr(KindConflict, "APPOINTMENT_CLOSED", "appointment is completed or cancelled")
	ErrUsernameTaken          = newErr(KindConflict, "USERNAME_TAKEN", "username is already registered")
	ErrInactiveUser           = newErr(KindAuthorization, "USER_INACTIVE", "user is inactive")
)

// KindOf devuelve la clase de un error; INTERNAL si no es un *Error del dominio.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// CodeOf devuelve el código legible por máquina de un error.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return string(KindInternal)
}
