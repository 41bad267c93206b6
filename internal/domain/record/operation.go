package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind tipo de operación dentro de una transacción.
type Kind string

const (
	KindSave   Kind = "save"
	KindGet    Kind = "get"
	KindDelete Kind = "delete"
)

// Operation un paso de una transacción: {type: save|get|delete, store, data?, id?}.
// Many distingue "data" como lista de registros frente a un único registro.
type Operation struct {
	Kind  Kind
	Store Store
	Data  []Record
	Many  bool
	ID    string
}

// SaveOp construye una operación save de un registro.
func SaveOp(store Store, rec Record) Operation {
	return Operation{Kind: KindSave, Store: store, Data: []Record{rec}}
}

// SaveManyOp construye una operación save de varios registros.
func SaveManyOp(store Store, recs []Record) Operation {
	return Operation{Kind: KindSave, Store: store, Data: recs, Many: true}
}

// GetOp construye una operación get. id vacío equivale a leer todo el almacén.
func GetOp(store Store, id string) Operation {
	return Operation{Kind: KindGet, Store: store, ID: id}
}

// DeleteOp construye una operación delete.
func DeleteOp(store Store, id string) Operation {
	return Operation{Kind: KindDelete, Store: store, ID: id}
}

type operationJSON struct {
	Type  string          `json:"type,omitempty"`
	Kind  string          `json:"kind,omitempty"`
	Store string          `json:"store"`
	Data  json.RawMessage `json:"data,omitempty"`
	ID    string          `json:"id,omitempty"`
}

// MarshalJSON usa la forma {type, store, data, id}.
func (o Operation) MarshalJSON() ([]byte, error) {
	out := operationJSON{Type: string(o.Kind), Store: string(o.Store), ID: o.ID}
	if len(o.Data) > 0 || o.Many {
		var data any = o.Data
		if !o.Many && len(o.Data) == 1 {
			data = o.Data[0]
		}
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		out.Data = b
	}
	return json.Marshal(out)
}

// UnmarshalJSON acepta "type" o "kind" y "data" como objeto o arreglo.
// El tipo no se valida aquí: un tipo desconocido se rechaza al ejecutar la transacción.
func (o *Operation) UnmarshalJSON(b []byte) error {
	var in operationJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	kind := in.Type
	if kind == "" {
		kind = in.Kind
	}
	*o = Operation{Kind: Kind(kind), Store: Store(in.Store), ID: in.ID}
	data := bytes.TrimSpace(in.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '[' {
		var recs []Record
		if err := json.Unmarshal(data, &recs); err != nil {
			return fmt.Errorf("operation data: %w", err)
		}
		o.Data = recs
		o.Many = true
		return nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("operation data: %w", err)
	}
	o.Data = []Record{rec}
	return nil
}
