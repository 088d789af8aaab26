package store

import (
	"context"
	"fmt"
)

// WriteSession inserts a session record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, model, instance, started_seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sess.ID, sess.Model, sess.Instance, sess.StartedSeq)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteFrame inserts a frame and all of its samples in one transaction.
//
// The session must exist (foreign key constraint). Writing the same
// (session, frame) twice fails on the primary key.
func (s *Store) WriteFrame(ctx context.Context, f Frame) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write frame: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO frames (session_id, frame, seq)
		VALUES (?, ?, ?)
	`, f.SessionID, f.Frame, f.Seq); err != nil {
		return fmt.Errorf("write frame %s/%d: %w", f.SessionID, f.Frame, err)
	}

	if len(f.Parameters) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO parameter_samples (session_id, frame, idx, param_id, value)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("write frame: prepare parameters: %w", err)
		}
		defer stmt.Close()
		for _, p := range f.Parameters {
			if _, err := stmt.ExecContext(ctx, f.SessionID, f.Frame, p.Index, p.ID, p.Value); err != nil {
				return fmt.Errorf("write parameter sample %q: %w", p.ID, err)
			}
		}
	}

	if len(f.Drawables) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO drawable_samples
			(session_id, frame, idx, drawable_id, flags, dirty, opacity, draw_order, render_order, vertices)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("write frame: prepare drawables: %w", err)
		}
		defer stmt.Close()
		for _, d := range f.Drawables {
			if _, err := stmt.ExecContext(ctx,
				f.SessionID,
				f.Frame,
				d.Index,
				d.ID,
				int(d.Flags),
				d.Dirty,
				d.Opacity,
				d.DrawOrder,
				d.RenderOrder,
				marshalVertices(d.Vertices),
			); err != nil {
				return fmt.Errorf("write drawable sample %q: %w", d.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write frame: commit: %w", err)
	}
	return nil
}
