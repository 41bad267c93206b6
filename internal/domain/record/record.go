// Package record define el modelo no tipado que se persiste en los almacenes:
// un Record es un mapa campo → valor con id, created_at y updated_at.
package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jhoicas/erp-pos/internal/domain"
)

// Campos que la capa de almacenamiento inyecta o consulta.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// TimeLayout replica el formato ISO-8601 con milisegundos y sufijo Z (UTC).
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Record entidad de negocio sin esquema en la frontera de almacenamiento.
// El esquema se respeta solo por convención en los módulos que la usan.
type Record map[string]any

// ID devuelve el id del registro o "" si falta o no es string.
func (r Record) ID() string {
	return r.String(FieldID)
}

// Clone copia superficial del registro.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String devuelve el campo como string ("" si falta o tiene otro tipo).
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Float devuelve el campo numérico como float64. Acepta los tipos que produce
// encoding/json y los que suelen construir los módulos en memoria.
func (r Record) Float(key string) float64 {
	return toFloat(r[key])
}

// Map devuelve el campo como objeto anidado (nil si no lo es).
func (r Record) Map(key string) map[string]any {
	switch m := r[key].(type) {
	case map[string]any:
		return m
	case Record:
		return m
	}
	return nil
}

// Time interpreta el campo como marca de tiempo ISO-8601 o fecha YYYY-MM-DD.
func (r Record) Time(key string) (time.Time, bool) {
	s := r.String(key)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Merge aplica newer sobre old campo a campo (merge superficial): los campos de old que no
// aparecen en newer sobreviven. created_at se fija una sola vez y nunca se sobreescribe.
func Merge(old, newer Record) Record {
	out := old.Clone()
	if out == nil {
		out = make(Record, len(newer))
	}
	for k, v := range newer {
		out[k] = v
	}
	if created, ok := old[FieldCreatedAt]; ok && created != nil && created != "" {
		out[FieldCreatedAt] = created
	}
	return out
}

// Timestamp formatea t como lo hace toISOString (UTC, milisegundos).
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Decode convierte el registro en una estructura tipada vía JSON.
func Decode(r Record, v any) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// Encode convierte una estructura tipada en Record vía JSON.
func Encode(v any) (Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode entity: %w", err)
	}
	if r == nil {
		return nil, fmt.Errorf("encode entity: %w", domain.ErrInvalidInput)
	}
	return r, nil
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}
