package dto

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/domain"
)

var validate = validator.New()

func init() {
	// decimal.Decimal se valida como número (min=0, gt=0, required).
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// scale=N: a lo sumo N decimales (importes 2, cantidades 3).
	_ = validate.RegisterValidation("scale", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		d := decimal.NewFromFloat(fl.Field().Float())
		return d.Equal(d.Round(int32(n)))
	})
	// notblank: un texto solo con espacios cuenta como vacío.
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// ValidationError error de validación con detalle por campo (campo -> tag fallido).
type ValidationError struct {
	Err    *domain.Error
	Fields map[string]string
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate ejecuta las etiquetas validate: del request. Devuelve *ValidationError (clase VALIDATION).
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrValidation.WithMessage("%v", err)
	}
	fields := make(map[string]string, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		fields[ns] = fe.Tag()
		names = append(names, ns)
	}
	sort.Strings(names)
	return &ValidationError{
		Err:    domain.ErrValidation.WithMessage("invalid fields: %s", strings.Join(names, ", ")),
		Fields: fields,
	}
}
