// Package kv implementa el sustrato de respaldo: cada almacén se guarda como un arreglo
// JSON bajo la clave <dbName>_<store> de un almacén clave-valor simple.
package kv

import (
	"context"
	"errors"
)

// ErrInvalidKey clave vacía o con separadores de ruta.
var ErrInvalidKey = errors.New("clave inválida")

// KeyValue almacén de cadenas por clave (getItem/setItem/removeItem).
type KeyValue interface {
	// GetItem devuelve ok=false si la clave no existe.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Close() error
}
