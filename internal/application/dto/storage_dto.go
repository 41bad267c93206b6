package dto

import (
	"bytes"
	"encoding/json"

	"github.com/jhoicas/erp-pos/internal/domain/record"
)

// TransactionRequest lote de operaciones. Se acepta el arreglo desnudo o
// {"operations": [...], "atomic": true}.
type TransactionRequest struct {
	Operations []record.Operation `json:"operations"`
	Atomic     bool               `json:"atomic"`
}

// UnmarshalJSON admite ambas formas del cuerpo.
func (r *TransactionRequest) UnmarshalJSON(b []byte) error {
	if t := bytes.TrimSpace(b); len(t) > 0 && t[0] == '[' {
		r.Atomic = false
		return json.Unmarshal(t, &r.Operations)
	}
	type plain TransactionRequest
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = TransactionRequest(p)
	return nil
}

// TransactionResponse resultados en el orden de las operaciones. Ante un fallo incluye
// los resultados ya completados y el error.
type TransactionResponse struct {
	Results []any          `json:"results"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// ImportResponse número de registros escritos por la importación.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// DeleteResponse resultado de un borrado (siempre true: es idempotente).
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}
