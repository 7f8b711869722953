package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/lib/pq"
)

var (
	ErrBracketNotFound    = errors.New("bracket not found")
	ErrBracketConflict    = errors.New("user already has a bracket for this tournament")
	ErrBracketRefInvalid  = errors.New("bracket user or tournament conflict or invalid")
)

type BracketRepository interface {
	Create(ctx context.Context, bracket *models.Bracket) error
	GetByID(ctx context.Context, id int) (*models.Bracket, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Bracket, error)
	UpsertPrediction(ctx context.Context, exec SQLExecutor, pred *models.BracketPrediction) error
	SetChampionPick(ctx context.Context, exec SQLExecutor, bracketID int, predictedChampionID int) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, bracketID int, status models.BracketStatus) error
	// SetSlotResult records a completed match's outcome on every bracket
	// prediction occupying the slot within the tournament.
	SetSlotResult(ctx context.Context, exec SQLExecutor, tournamentID, drawPosition int, actualWinnerID int, actualScore string) error
	SetActualChampion(ctx context.Context, exec SQLExecutor, tournamentID int, championID int) error
	SaveScores(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

const bracketColumns = `id, user_id, tournament_id, status, predicted_champion_id,
	champion_is_correct, champion_points, actual_champion_id,
	total_score, correct_picks, total_resolved_picks, accuracy_percentage,
	created_at, updated_at`

const bracketPredictionColumns = `id, bracket_id, match_position, round, predicted_winner_id,
	predicted_score, actual_winner_id, actual_score, is_correct, points_earned`

func (r *postgresBracketRepository) Create(ctx context.Context, bracket *models.Bracket) error {
	query := `
		INSERT INTO brackets (user_id, tournament_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		bracket.UserID,
		bracket.TournamentID,
		bracket.Status,
	).Scan(&bracket.ID, &bracket.CreatedAt, &bracket.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "brackets_user_id_tournament_id_key" {
					return ErrBracketConflict
				}
			case "23503":
				return ErrBracketRefInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, id int) (*models.Bracket, error) {
	query := `SELECT ` + bracketColumns + ` FROM brackets WHERE id = $1`

	bracket := &models.Bracket{}
	err := scanBracket(r.db.QueryRowContext(ctx, query, id).Scan, bracket)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket %d: %w", id, err)
	}

	if err := r.loadPredictions(ctx, bracket); err != nil {
		return nil, err
	}
	return bracket, nil
}

func (r *postgresBracketRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Bracket, error) {
	query := `SELECT ` + bracketColumns + ` FROM brackets WHERE tournament_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query brackets for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	brackets := make([]*models.Bracket, 0)
	for rows.Next() {
		bracket := &models.Bracket{}
		if err := scanBracket(rows.Scan, bracket); err != nil {
			return nil, fmt.Errorf("failed to scan bracket row: %w", err)
		}
		brackets = append(brackets, bracket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket rows iteration: %w", err)
	}

	for _, bracket := range brackets {
		if err := r.loadPredictions(ctx, bracket); err != nil {
			return nil, err
		}
	}
	return brackets, nil
}

func (r *postgresBracketRepository) UpsertPrediction(ctx context.Context, exec SQLExecutor, pred *models.BracketPrediction) error {
	query := `
		INSERT INTO bracket_predictions (bracket_id, match_position, round, predicted_winner_id, predicted_score)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (bracket_id, match_position) DO UPDATE SET
			round = EXCLUDED.round,
			predicted_winner_id = EXCLUDED.predicted_winner_id,
			predicted_score = EXCLUDED.predicted_score
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		pred.BracketID,
		pred.MatchPosition,
		pred.Round,
		pred.PredictedWinnerID,
		pred.PredictedScore,
	).Scan(&pred.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert bracket prediction (bracket %d, position %d): %w",
			pred.BracketID, pred.MatchPosition, err)
	}
	return nil
}

func (r *postgresBracketRepository) SetChampionPick(ctx context.Context, exec SQLExecutor, bracketID int, predictedChampionID int) error {
	query := `
		UPDATE brackets
		SET predicted_champion_id = $1, champion_is_correct = NULL, champion_points = 0, updated_at = now()
		WHERE id = $2`

	result, err := exec.ExecContext(ctx, query, predictedChampionID, bracketID)
	if err != nil {
		return fmt.Errorf("failed to set champion pick on bracket %d: %w", bracketID, err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, bracketID int, status models.BracketStatus) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE brackets SET status = $1, updated_at = now() WHERE id = $2`, status, bracketID)
	if err != nil {
		return fmt.Errorf("failed to update status of bracket %d: %w", bracketID, err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) SetSlotResult(ctx context.Context, exec SQLExecutor, tournamentID, drawPosition int, actualWinnerID int, actualScore string) error {
	query := `
		UPDATE bracket_predictions bp
		SET actual_winner_id = $1, actual_score = $2
		FROM brackets b
		WHERE bp.bracket_id = b.id AND b.tournament_id = $3 AND bp.match_position = $4`

	_, err := exec.ExecContext(ctx, query, actualWinnerID, actualScore, tournamentID, drawPosition)
	if err != nil {
		return fmt.Errorf("failed to set slot result (tournament %d, position %d): %w",
			tournamentID, drawPosition, err)
	}
	return nil
}

func (r *postgresBracketRepository) SetActualChampion(ctx context.Context, exec SQLExecutor, tournamentID int, championID int) error {
	query := `UPDATE brackets SET actual_champion_id = $1, updated_at = now() WHERE tournament_id = $2`
	_, err := exec.ExecContext(ctx, query, championID, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to set actual champion for tournament %d: %w", tournamentID, err)
	}
	return nil
}

// SaveScores persists a scored bracket: the derived rollups on the bracket
// row plus per-prediction correctness and points.
func (r *postgresBracketRepository) SaveScores(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	var championIsCorrect *bool
	championPoints := 0
	if bracket.ChampionPick != nil {
		championIsCorrect = bracket.ChampionPick.IsCorrect
		championPoints = bracket.ChampionPick.PointsEarned
	}

	query := `
		UPDATE brackets
		SET total_score = $1, correct_picks = $2, total_resolved_picks = $3,
		    accuracy_percentage = $4, champion_is_correct = $5, champion_points = $6,
		    updated_at = now()
		WHERE id = $7`

	result, err := exec.ExecContext(ctx, query,
		bracket.TotalScore,
		bracket.CorrectPicks,
		bracket.TotalResolvedPicks,
		bracket.AccuracyPercentage,
		championIsCorrect,
		championPoints,
		bracket.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save scores of bracket %d: %w", bracket.ID, err)
	}
	if err := checkAffectedRows(result, ErrBracketNotFound); err != nil {
		return err
	}

	for i := range bracket.Predictions {
		p := &bracket.Predictions[i]
		_, err := exec.ExecContext(ctx,
			`UPDATE bracket_predictions SET is_correct = $1, points_earned = $2 WHERE id = $3`,
			p.IsCorrect, p.PointsEarned, p.ID)
		if err != nil {
			return fmt.Errorf("failed to save score of bracket prediction %d: %w", p.ID, err)
		}
	}
	return nil
}

func (r *postgresBracketRepository) loadPredictions(ctx context.Context, bracket *models.Bracket) error {
	query := `SELECT ` + bracketPredictionColumns + `
		FROM bracket_predictions
		WHERE bracket_id = $1
		ORDER BY match_position`

	rows, err := r.db.QueryContext(ctx, query, bracket.ID)
	if err != nil {
		return fmt.Errorf("failed to query predictions of bracket %d: %w", bracket.ID, err)
	}
	defer rows.Close()

	bracket.Predictions = make([]models.BracketPrediction, 0)
	for rows.Next() {
		var p models.BracketPrediction
		if err := rows.Scan(
			&p.ID,
			&p.BracketID,
			&p.MatchPosition,
			&p.Round,
			&p.PredictedWinnerID,
			&p.PredictedScore,
			&p.ActualWinnerID,
			&p.ActualScore,
			&p.IsCorrect,
			&p.PointsEarned,
		); err != nil {
			return fmt.Errorf("failed to scan bracket prediction row: %w", err)
		}
		bracket.Predictions = append(bracket.Predictions, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error during bracket prediction rows iteration: %w", err)
	}
	return nil
}

func scanBracket(scan func(dest ...interface{}) error, bracket *models.Bracket) error {
	var predictedChampionID sql.NullInt64
	var championIsCorrect sql.NullBool
	var championPoints int

	err := scan(
		&bracket.ID,
		&bracket.UserID,
		&bracket.TournamentID,
		&bracket.Status,
		&predictedChampionID,
		&championIsCorrect,
		&championPoints,
		&bracket.ActualChampionID,
		&bracket.TotalScore,
		&bracket.CorrectPicks,
		&bracket.TotalResolvedPicks,
		&bracket.AccuracyPercentage,
		&bracket.CreatedAt,
		&bracket.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if predictedChampionID.Valid {
		pick := &models.ChampionPick{
			PredictedChampionID: int(predictedChampionID.Int64),
			PointsEarned:        championPoints,
		}
		if championIsCorrect.Valid {
			v := championIsCorrect.Bool
			pick.IsCorrect = &v
		}
		bracket.ChampionPick = pick
	}
	return nil
}
