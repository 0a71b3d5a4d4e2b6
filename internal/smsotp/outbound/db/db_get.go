package db

import (
	"context"

	"github.com/shandysiswandi/textotp/internal/smsotp/entity"
)

func (s *DB) GetDeviceByID(ctx context.Context, id int64) (_ *entity.Device, err error) {
	ctx, span := s.startSpan(ctx, "GetDeviceByID")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, user_id, number, key, last_step, confirmed, created_at, updated_at
		FROM smsotp_devices
		WHERE id = $1`

	var d entity.Device
	err = s.conn.QueryRow(ctx, query, id).
		Scan(&d.ID, &d.UserID, &d.Number, &d.Key, &d.LastStep, &d.Confirmed, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &d, nil
}

func (s *DB) ListDevicesByUser(ctx context.Context, userID int64) (_ []entity.Device, err error) {
	ctx, span := s.startSpan(ctx, "ListDevicesByUser")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, user_id, number, key, last_step, confirmed, created_at, updated_at
		FROM smsotp_devices
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	devices := make([]entity.Device, 0)
	for rows.Next() {
		var d entity.Device
		if err = rows.Scan(&d.ID, &d.UserID, &d.Number, &d.Key, &d.LastStep, &d.Confirmed, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, s.mapError(err)
		}
		devices = append(devices, d)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return devices, nil
}
