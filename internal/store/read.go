package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/mocsync/internal/model"
)

// ReadSession retrieves a single session by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, model, instance, started_seq
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Model, &sess.Instance, &sess.StartedSeq)
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// ListSessions returns every session ordered by started_seq, then id.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model, instance, started_seq
		FROM sessions
		ORDER BY started_seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Model, &sess.Instance, &sess.StartedSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadFrames returns every frame of a session with its samples.
// Frames are ordered by seq; samples within a frame by native offset.
//
// Returns an empty slice (not nil) if the session has no frames.
func (s *Store) ReadFrames(ctx context.Context, sessionID string) ([]Frame, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT frame, seq
		FROM frames
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}

	frames := []Frame{}
	byNumber := make(map[int]int)
	for rows.Next() {
		f := Frame{SessionID: sessionID}
		if err := rows.Scan(&f.Frame, &f.Seq); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		byNumber[f.Frame] = len(frames)
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate frames: %w", err)
	}
	rows.Close()

	if err := s.readParameterSamples(ctx, sessionID, frames, byNumber); err != nil {
		return nil, err
	}
	if err := s.readDrawableSamples(ctx, sessionID, frames, byNumber); err != nil {
		return nil, err
	}
	return frames, nil
}

func (s *Store) readParameterSamples(ctx context.Context, sessionID string, frames []Frame, byNumber map[int]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT frame, idx, param_id, value
		FROM parameter_samples
		WHERE session_id = ?
		ORDER BY frame ASC, idx ASC
	`, sessionID)
	if err != nil {
		return fmt.Errorf("query parameter samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var frame int
		var p ParameterSample
		if err := rows.Scan(&frame, &p.Index, &p.ID, &p.Value); err != nil {
			return fmt.Errorf("scan parameter sample: %w", err)
		}
		if i, ok := byNumber[frame]; ok {
			frames[i].Parameters = append(frames[i].Parameters, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate parameter samples: %w", err)
	}
	return nil
}

func (s *Store) readDrawableSamples(ctx context.Context, sessionID string, frames []Frame, byNumber map[int]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT frame, idx, drawable_id, flags, dirty, opacity, draw_order, render_order, vertices
		FROM drawable_samples
		WHERE session_id = ?
		ORDER BY frame ASC, idx ASC
	`, sessionID)
	if err != nil {
		return fmt.Errorf("query drawable samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			frame    int
			flags    int
			vertices []byte
			d        DrawableSample
		)
		if err := rows.Scan(&frame, &d.Index, &d.ID, &flags, &d.Dirty,
			&d.Opacity, &d.DrawOrder, &d.RenderOrder, &vertices); err != nil {
			return fmt.Errorf("scan drawable sample: %w", err)
		}
		d.Flags = model.DynamicFlags(flags)
		if d.Vertices, err = unmarshalVertices(vertices); err != nil {
			return fmt.Errorf("drawable sample %q: %w", d.ID, err)
		}
		if i, ok := byNumber[frame]; ok {
			frames[i].Drawables = append(frames[i].Drawables, d)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate drawable samples: %w", err)
	}
	return nil
}

// LastSeq returns the highest frame seq recorded, or 0 for an empty store.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM frames`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}
