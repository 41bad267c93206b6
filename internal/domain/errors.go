package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrUserNotFound     = errors.New("usuario no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrDuplicate        = errors.New("recurso duplicado")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrUnknownStore     = errors.New("almacén desconocido")
	ErrUnknownOperation = errors.New("operación desconocida")
	ErrSubstrate        = errors.New("fallo del sustrato de almacenamiento")
)

// UnknownOperationError se devuelve cuando una transacción contiene un tipo de operación
// fuera de {save, get, delete}. Aborta las operaciones restantes.
type UnknownOperationError struct {
	Kind string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("operación desconocida: %q", e.Kind)
}

// Is permite errors.Is(err, ErrUnknownOperation).
func (e *UnknownOperationError) Is(target error) bool {
	return target == ErrUnknownOperation
}

// SubstrateError envuelve un rechazo del motor físico (p. ej. violación de índice único).
// Se propaga al llamador tal cual; no hay reintentos.
type SubstrateError struct {
	Substrate string // postgres, sqlite, local
	Op        string // put, get, get_all, delete
	Store     string
	Err       error
}

func (e *SubstrateError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Substrate, e.Op, e.Store, e.Err)
}

// Unwrap expone la causa (ErrDuplicate, error de red, etc.).
func (e *SubstrateError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrSubstrate).
func (e *SubstrateError) Is(target error) bool {
	return target == ErrSubstrate
}
