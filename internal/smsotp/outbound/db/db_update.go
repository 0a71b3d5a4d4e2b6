package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/textotp/internal/smsotp/entity"
)

func (s *DB) UpdateDevice(ctx context.Context, in entity.UpdateDevice) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDevice")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE smsotp_devices
		SET number = COALESCE($1, number),
			key = COALESCE($2, key),
			updated_at = now()
		WHERE id = $3 AND user_id = $4`

	ct, err := s.conn.Exec(ctx, query, in.Number, in.Key, in.ID, in.UserID)
	if err != nil {
		return s.mapError(err)
	}
	if ct.RowsAffected() == 0 {
		return s.mapError(pgx.ErrNoRows)
	}

	return nil
}

// AdvanceDeviceStep is the compare-and-set that enforces the replay
// invariant: the watermark only moves forward, and two concurrent
// verifications that read the same snapshot cannot both win. The first
// successful verification also confirms the device.
func (s *DB) AdvanceDeviceStep(ctx context.Context, id, fromStep, toStep int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "AdvanceDeviceStep")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE smsotp_devices
		SET last_step = $1, confirmed = TRUE, updated_at = now()
		WHERE id = $2 AND last_step = $3`

	ct, err := s.conn.Exec(ctx, query, toStep, id, fromStep)
	if err != nil {
		return false, s.mapError(err)
	}

	return ct.RowsAffected() == 1, nil
}
