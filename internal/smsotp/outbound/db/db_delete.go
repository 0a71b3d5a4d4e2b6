package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

func (s *DB) DeleteDevice(ctx context.Context, id, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteDevice")
	defer func() { s.endSpan(span, err) }()

	const query = `DELETE FROM smsotp_devices WHERE id = $1 AND user_id = $2`

	ct, err := s.conn.Exec(ctx, query, id, userID)
	if err != nil {
		return s.mapError(err)
	}
	if ct.RowsAffected() == 0 {
		return s.mapError(pgx.ErrNoRows)
	}

	return nil
}
