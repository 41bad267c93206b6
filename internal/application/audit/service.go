// Package audit registra y consulta el historial de cambios (almacén audit_logs).
package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/erp-pos/internal/application/dto"
	"github.com/jhoicas/erp-pos/internal/application/ports"
	"github.com/jhoicas/erp-pos/internal/domain"
	"github.com/jhoicas/erp-pos/internal/domain/entity"
	"github.com/jhoicas/erp-pos/internal/domain/record"
	"github.com/jhoicas/erp-pos/pkg/logger"
)

const (
	localIP          = "local"
	defaultUserAgent = "erp-pos"
	unknownUser      = "desconocido"
)

var _ ports.Auditor = (*Service)(nil)

// Service auditoría sobre el almacén audit_logs.
type Service struct {
	store ports.RecordStore
	log   *logger.Logger
	now   func() time.Time
}

// NewService construye el servicio. log nil usa un logger mudo.
func NewService(store ports.RecordStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, log: log.Component("audit"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record guarda una entrada. Un fallo al guardar no interrumpe la operación auditada:
// solo se registra en el log.
func (s *Service) Record(ctx context.Context, userID, action, resource string, oldValue, newValue any) {
	rec := record.Record{
		"user_id":    userID,
		"action":     action,
		"resource":   resource,
		"old_value":  oldValue,
		"new_value":  newValue,
		"timestamp":  record.Timestamp(s.now()),
		"ip":         localIP,
		"user_agent": defaultUserAgent,
	}
	if _, err := s.store.Save(ctx, record.AuditLogs, rec); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Str("action", action).
			Str("resource", resource).Msg("no se pudo registrar la auditoría")
	}
}

// List devuelve las entradas que cumplen el filtro, más recientes primero.
func (s *Service) List(ctx context.Context, f dto.AuditFilter) ([]entity.AuditLog, error) {
	from, to, err := parseRange(f.From, f.To)
	if err != nil {
		return nil, err
	}
	recs, err := s.store.GetAll(ctx, record.AuditLogs)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	out := make([]entity.AuditLog, 0, len(recs))
	for _, r := range recs {
		var l entity.AuditLog
		if err := record.Decode(r, &l); err != nil {
			return nil, err
		}
		if !matches(l, f, from, to) {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

// Export igual que List pero añade nombre y rol del usuario.
func (s *Service) Export(ctx context.Context, f dto.AuditFilter) ([]dto.AuditExportRow, error) {
	logs, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}
	users, err := s.store.GetAll(ctx, record.Users)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	byID := make(map[string]record.Record, len(users))
	for _, u := range users {
		byID[u.ID()] = u
	}
	out := make([]dto.AuditExportRow, 0, len(logs))
	for _, l := range logs {
		name, role := unknownUser, unknownUser
		if u, ok := byID[l.UserID]; ok {
			name = u.String("fullname")
			if name == "" {
				name = u.String("username")
			}
			role = u.String("role")
		}
		out = append(out, dto.AuditExportRow{
			ID: l.ID, UserID: l.UserID, UserName: name, UserRole: role,
			Action: l.Action, Resource: l.Resource,
			OldValue: l.OldValue, NewValue: l.NewValue,
			Timestamp: l.Timestamp, IP: l.IP,
		})
	}
	return out, nil
}

func matches(l entity.AuditLog, f dto.AuditFilter, from, to time.Time) bool {
	if f.UserID != "" && l.UserID != f.UserID {
		return false
	}
	if f.Action != "" && l.Action != f.Action {
		return false
	}
	if f.Resource != "" && l.Resource != f.Resource {
		return false
	}
	if from.IsZero() && to.IsZero() {
		return true
	}
	ts, err := time.Parse(time.RFC3339Nano, l.Timestamp)
	if err != nil {
		return false
	}
	if !from.IsZero() && ts.Before(from) {
		return false
	}
	if !to.IsZero() && !ts.Before(to) {
		return false
	}
	return true
}

// parseRange interpreta from/to (YYYY-MM-DD) como [from 00:00, to+1 00:00) en UTC.
func parseRange(fromS, toS string) (from, to time.Time, err error) {
	if fromS != "" {
		if from, err = time.Parse(time.DateOnly, fromS); err != nil {
			return from, to, fmt.Errorf("from %q: %w", fromS, domain.ErrInvalidInput)
		}
	}
	if toS != "" {
		if to, err = time.Parse(time.DateOnly, toS); err != nil {
			return from, to, fmt.Errorf("to %q: %w", toS, domain.ErrInvalidInput)
		}
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}
