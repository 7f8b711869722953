package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/lib/pq"
)

var (
	ErrPredictionNotFound   = errors.New("prediction not found")
	ErrPredictionConflict   = errors.New("user already has a prediction for this match")
	ErrPredictionRefInvalid = errors.New("prediction user or match conflict or invalid")
)

// PredictionWindow scopes a listing to a date range and optionally to one
// tournament; it is how leaderboard snapshots are read. StartDate is
// inclusive, EndDate exclusive, so adjacent windows never share a boundary
// instant.
type PredictionWindow struct {
	StartDate    time.Time
	EndDate      time.Time
	TournamentID *int
}

type PredictionRepository interface {
	Create(ctx context.Context, pred *models.Prediction) error
	GetByID(ctx context.Context, id int) (*models.Prediction, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error)
	ListByMatch(ctx context.Context, matchID int) ([]*models.Prediction, error)
	ListByWindow(ctx context.Context, window PredictionWindow) ([]*models.Prediction, error)
	Resolve(ctx context.Context, exec SQLExecutor, id int, isCorrect bool, pointsEarned int) error
}

type postgresPredictionRepository struct {
	db *sql.DB
}

func NewPostgresPredictionRepository(db *sql.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

const predictionColumns = `id, user_id, match_id, tournament_id, predicted_winner_id,
	predicted_score, confidence_level, prediction_date, is_public, is_correct, points_earned`

func (r *postgresPredictionRepository) Create(ctx context.Context, pred *models.Prediction) error {
	query := `
		INSERT INTO predictions
			(user_id, match_id, tournament_id, predicted_winner_id, predicted_score, confidence_level, prediction_date, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		pred.UserID,
		pred.MatchID,
		pred.TournamentID,
		pred.PredictedWinnerID,
		pred.PredictedScore,
		pred.ConfidenceLevel,
		pred.PredictionDate,
		pred.IsPublic,
	).Scan(&pred.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "predictions_user_id_match_id_key" {
					return ErrPredictionConflict
				}
			case "23503":
				return ErrPredictionRefInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresPredictionRepository) GetByID(ctx context.Context, id int) (*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`

	pred := &models.Prediction{}
	err := scanPrediction(r.db.QueryRowContext(ctx, query, id).Scan, pred)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPredictionNotFound
		}
		return nil, fmt.Errorf("failed to scan prediction %d: %w", id, err)
	}
	return pred, nil
}

func (r *postgresPredictionRepository) ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE user_id = $1 ORDER BY prediction_date DESC`
	return r.list(ctx, query, userID)
}

func (r *postgresPredictionRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE match_id = $1 ORDER BY id`
	return r.list(ctx, query, matchID)
}

func (r *postgresPredictionRepository) ListByWindow(ctx context.Context, window PredictionWindow) ([]*models.Prediction, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + predictionColumns + `
		FROM predictions
		WHERE prediction_date >= $1 AND prediction_date < $2`)

	args := []interface{}{window.StartDate, window.EndDate}
	if window.TournamentID != nil {
		queryBuilder.WriteString(" AND tournament_id = $" + strconv.Itoa(len(args)+1))
		args = append(args, *window.TournamentID)
	}
	queryBuilder.WriteString(" ORDER BY id")

	return r.list(ctx, queryBuilder.String(), args...)
}

func (r *postgresPredictionRepository) Resolve(ctx context.Context, exec SQLExecutor, id int, isCorrect bool, pointsEarned int) error {
	query := `UPDATE predictions SET is_correct = $1, points_earned = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, isCorrect, pointsEarned, id)
	if err != nil {
		return fmt.Errorf("failed to resolve prediction %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}

func (r *postgresPredictionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	predictions := make([]*models.Prediction, 0)
	for rows.Next() {
		pred := &models.Prediction{}
		if err := scanPrediction(rows.Scan, pred); err != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", err)
		}
		predictions = append(predictions, pred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during prediction rows iteration: %w", err)
	}
	return predictions, nil
}

func scanPrediction(scan func(dest ...interface{}) error, pred *models.Prediction) error {
	return scan(
		&pred.ID,
		&pred.UserID,
		&pred.MatchID,
		&pred.TournamentID,
		&pred.PredictedWinnerID,
		&pred.PredictedScore,
		&pred.ConfidenceLevel,
		&pred.PredictionDate,
		&pred.IsPublic,
		&pred.IsCorrect,
		&pred.PointsEarned,
	)
}
