// Package requests is the collection of submitted assistance requests, backed
// by SQLite.
package requests

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mbolis/assistance-intake/model"
)

var ErrNotFound = errors.New("request not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db}
}

// Filter narrows List. Zero fields match everything. Query is a
// case-insensitive substring of the requester name, the request name or the
// description.
type Filter struct {
	Query      string
	Status     model.Status
	TypeID     string
	DistrictID string
}

const columns = `
	id,
	requester_name, requester_phone, district, city, street,
	name, description, type, sub_types,
	need_transportation, need_volunteers, attachments,
	status, assigned_to, created_at, updated_at`

func (s *Store) Append(ctx context.Context, req model.Request) error {
	var (
		district, city, reqType, subTypes, attachments []byte
		err                                            error
	)
	for _, enc := range []struct {
		dst *[]byte
		v   any
	}{
		{&district, req.RequesterDetails.District},
		{&city, req.RequesterDetails.City},
		{&reqType, req.RequestDetails.Type},
		{&subTypes, nonNil(req.RequestDetails.SubTypes)},
		{&attachments, nonNil(req.RequestDetails.Attachments)},
	} {
		*enc.dst, err = json.Marshal(enc.v)
		if err != nil {
			return fmt.Errorf("requests.append.encode: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO request (
			id,
			requester_name, requester_phone, district_id, district, city, street,
			name, description, type_id, type, sub_types,
			need_transportation, need_volunteers, attachments,
			status, assigned_to, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID,
		req.RequesterDetails.Name,
		req.RequesterDetails.Phone,
		req.RequesterDetails.District.ID,
		string(district),
		string(city),
		req.RequesterDetails.Street,
		req.RequestDetails.Name,
		req.RequestDetails.Description,
		req.RequestDetails.Type.ID,
		string(reqType),
		string(subTypes),
		req.RequestDetails.NeedTransportation,
		req.RequestDetails.NeedVolunteers,
		string(attachments),
		req.RequestStatus.Status,
		req.RequestStatus.AssignedTo,
		req.CreatedAt.UTC(),
		req.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("requests.append: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (model.Request, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM request WHERE id = ?`, id)
	req, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return req, ErrNotFound
	}
	return req, err
}

// List returns the matching requests, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]model.Request, error) {
	var (
		where []string
		args  []any
	)
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, `(
			instr(lower(requester_name), lower(?)) > 0
			OR instr(lower(name), lower(?)) > 0
			OR instr(lower(description), lower(?)) > 0)`)
		args = append(args, q, q, q)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.TypeID != "" {
		where = append(where, "type_id = ?")
		args = append(args, f.TypeID)
	}
	if f.DistrictID != "" {
		where = append(where, "district_id = ?")
		args = append(args, f.DistrictID)
	}

	query := `SELECT ` + columns + ` FROM request`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("requests.list: %w", err)
	}
	defer rows.Close()

	list := []model.Request{}
	for rows.Next() {
		req, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("requests.list: %w", err)
	}
	return list, nil
}

// Update changes the triage fields of a request and bumps its update time.
func (s *Store) Update(ctx context.Context, id string, status model.Status, assignedTo string, now time.Time) (model.Request, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE request
		SET
			status = ?,
			assigned_to = ?,
			updated_at = ?
		WHERE id = ?`,
		status,
		assignedTo,
		now.UTC(),
		id,
	)
	if err != nil {
		return model.Request{}, fmt.Errorf("requests.update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Request{}, fmt.Errorf("requests.update.verify: %w", err)
	}
	if n < 1 {
		return model.Request{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Stats counts the requests per status. Every known status is present.
func (s *Store) Stats(ctx context.Context) (map[model.Status]int, error) {
	stats := make(map[model.Status]int, len(model.Statuses))
	for _, st := range model.Statuses {
		stats[st] = 0
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM request GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("requests.stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			st model.Status
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("requests.stats.scan: %w", err)
		}
		stats[st] = n
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (req model.Request, err error) {
	var (
		district, city, reqType, subTypes, attachments string
		transportation, volunteers                     sql.NullBool
	)
	err = row.Scan(
		&req.ID,
		&req.RequesterDetails.Name, &req.RequesterDetails.Phone, &district, &city, &req.RequesterDetails.Street,
		&req.RequestDetails.Name, &req.RequestDetails.Description, &reqType, &subTypes,
		&transportation, &volunteers, &attachments,
		&req.RequestStatus.Status, &req.RequestStatus.AssignedTo, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return
		}
		err = fmt.Errorf("requests.scan: %w", err)
		return
	}

	for _, dec := range []struct {
		src string
		dst any
	}{
		{district, &req.RequesterDetails.District},
		{city, &req.RequesterDetails.City},
		{reqType, &req.RequestDetails.Type},
		{subTypes, &req.RequestDetails.SubTypes},
		{attachments, &req.RequestDetails.Attachments},
	} {
		if err = json.Unmarshal([]byte(dec.src), dec.dst); err != nil {
			err = fmt.Errorf("requests.scan.decode: %w", err)
			return
		}
	}

	if transportation.Valid {
		req.RequestDetails.NeedTransportation = &transportation.Bool
	}
	if volunteers.Valid {
		req.RequestDetails.NeedVolunteers = &volunteers.Bool
	}
	return
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
