package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchPlayerInvalid     = errors.New("match player conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error)
	CompleteMatch(ctx context.Context, exec SQLExecutor, id int, winnerID int, score string, stats *models.MatchStats) error
	Delete(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, p1_id, p2_id, round, round_label, draw_position, surface, tier,
	match_time, status, winner_id, score, stats, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, p1_id, p2_id, round, round_label, draw_position, surface, tier, match_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.P1ID,
		match.P2ID,
		match.Round,
		match.RoundLabel,
		match.DrawPosition,
		match.Surface,
		match.Tier,
		match.MatchTime,
		match.Status,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match := &models.Match{}
	err := scanMatch(r.db.QueryRowContext(ctx, query, id).Scan, match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, roundFilter *int, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholder := 2

	if roundFilter != nil {
		queryBuilder.WriteString(" AND round = $" + strconv.Itoa(placeholder))
		args = append(args, *roundFilter)
		placeholder++
	}
	if statusFilter != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(placeholder))
		args = append(args, *statusFilter)
	}
	// Later rounds have lower numbers, so descending round order lists the
	// draw from the first round toward the final.
	queryBuilder.WriteString(" ORDER BY round DESC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match := &models.Match{}
		if err := scanMatch(rows.Scan, match); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CompleteMatch(ctx context.Context, exec SQLExecutor, id int, winnerID int, score string, stats *models.MatchStats) error {
	var statsJSON []byte
	if stats != nil {
		var err error
		statsJSON, err = json.Marshal(stats)
		if err != nil {
			return fmt.Errorf("failed to marshal match stats: %w", err)
		}
	}

	query := `
		UPDATE matches
		SET status = $1, winner_id = $2, score = $3, stats = $4
		WHERE id = $5`

	result, err := exec.ExecContext(ctx, query, models.MatchStatusCompleted, winnerID, score, statsJSON, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func scanMatch(scan func(dest ...interface{}) error, match *models.Match) error {
	var statsJSON []byte
	err := scan(
		&match.ID,
		&match.TournamentID,
		&match.P1ID,
		&match.P2ID,
		&match.Round,
		&match.RoundLabel,
		&match.DrawPosition,
		&match.Surface,
		&match.Tier,
		&match.MatchTime,
		&match.Status,
		&match.WinnerID,
		&match.Score,
		&statsJSON,
		&match.CreatedAt,
	)
	if err != nil {
		return err
	}
	if len(statsJSON) > 0 {
		stats := &models.MatchStats{}
		if err := json.Unmarshal(statsJSON, stats); err != nil {
			return fmt.Errorf("failed to unmarshal stats of match %d: %w", match.ID, err)
		}
		match.Stats = stats
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_p1_id_fkey", "matches_p2_id_fkey", "matches_winner_id_fkey":
			return ErrMatchPlayerInvalid
		}
	}
	return err
}
