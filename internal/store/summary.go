package store

import (
	"context"
	"fmt"
)

// SessionState summarizes a recorded session.
type SessionState struct {
	Session        Session
	FrameCount     int
	LastSeq        int64
	DirtySamples   int // drawable samples that carried vertex data
	CleanSamples   int // drawable samples gated out by the dirty flag
	LastParameters []ParameterSample
}

// GetSessionState summarizes one session. Returns sql.ErrNoRows (wrapped) if
// the session does not exist.
func (s *Store) GetSessionState(ctx context.Context, id string) (SessionState, error) {
	sess, err := s.ReadSession(ctx, id)
	if err != nil {
		return SessionState{}, fmt.Errorf("get session state: %w", err)
	}
	state := SessionState{Session: sess}

	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MAX(seq), 0)
		FROM frames
		WHERE session_id = ?
	`, id).Scan(&state.FrameCount, &state.LastSeq); err != nil {
		return state, fmt.Errorf("get session state: frames: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN dirty THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN dirty THEN 0 ELSE 1 END), 0)
		FROM drawable_samples
		WHERE session_id = ?
	`, id).Scan(&state.DirtySamples, &state.CleanSamples); err != nil {
		return state, fmt.Errorf("get session state: drawables: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.idx, p.param_id, p.value
		FROM parameter_samples p
		JOIN frames f ON f.session_id = p.session_id AND f.frame = p.frame
		WHERE p.session_id = ? AND f.seq = ?
		ORDER BY p.idx ASC
	`, id, state.LastSeq)
	if err != nil {
		return state, fmt.Errorf("get session state: parameters: %w", err)
	}
	defer rows.Close()

	state.LastParameters = []ParameterSample{}
	for rows.Next() {
		var p ParameterSample
		if err := rows.Scan(&p.Index, &p.ID, &p.Value); err != nil {
			return state, fmt.Errorf("get session state: scan parameter: %w", err)
		}
		state.LastParameters = append(state.LastParameters, p)
	}
	if err := rows.Err(); err != nil {
		return state, fmt.Errorf("get session state: iterate parameters: %w", err)
	}
	return state, nil
}
