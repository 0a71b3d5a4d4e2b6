package db

import (
	"context"

	"github.com/shandysiswandi/textotp/internal/smsotp/entity"
)

func (s *DB) CreateDevice(ctx context.Context, d entity.Device) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDevice")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO smsotp_devices (id, user_id, number, key, last_step, confirmed)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = s.conn.Exec(ctx, query, d.ID, d.UserID, d.Number, d.Key, d.LastStep, d.Confirmed)

	return s.mapError(err)
}
