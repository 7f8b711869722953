package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NicoMontoya/tennisworld/models"
)

var ErrPairRecordNotFound = errors.New("pair record not found")

// PairRecordRepository stores one head-to-head record per unordered player
// pair. Lookups normalize the key to (min, max), so callers may pass the
// players in either order.
type PairRecordRepository interface {
	GetByPair(ctx context.Context, playerA, playerB int) (*models.PairRecord, error)
	Save(ctx context.Context, exec SQLExecutor, rec *models.PairRecord) error
	ListAll(ctx context.Context) ([]*models.PairRecord, error)
}

type postgresPairRecordRepository struct {
	db *sql.DB
}

func NewPostgresPairRecordRepository(db *sql.DB) PairRecordRepository {
	return &postgresPairRecordRepository{db: db}
}

const pairColumns = `id, low_id, high_id, matches_count, low_wins, high_wins,
	by_surface, by_tier, set_stats, game_stats, match_history,
	last_match_date, last_match_id, updated_at`

func (r *postgresPairRecordRepository) GetByPair(ctx context.Context, playerA, playerB int) (*models.PairRecord, error) {
	low, high := playerA, playerB
	if low > high {
		low, high = high, low
	}

	query := `SELECT ` + pairColumns + ` FROM pair_records WHERE low_id = $1 AND high_id = $2`

	rec := &models.PairRecord{}
	err := scanPairRecord(r.db.QueryRowContext(ctx, query, low, high).Scan, rec)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPairRecordNotFound
		}
		return nil, fmt.Errorf("failed to scan pair record (%d,%d): %w", low, high, err)
	}
	return rec, nil
}

// Save upserts the whole record under its canonical key. The service layer
// serializes writers per pair, so last-write-wins semantics here are safe.
func (r *postgresPairRecordRepository) Save(ctx context.Context, exec SQLExecutor, rec *models.PairRecord) error {
	bySurface, err := json.Marshal(rec.BySurface)
	if err != nil {
		return fmt.Errorf("failed to marshal surface buckets: %w", err)
	}
	byTier, err := json.Marshal(rec.ByTier)
	if err != nil {
		return fmt.Errorf("failed to marshal tier buckets: %w", err)
	}
	setStats, err := json.Marshal(rec.SetStats)
	if err != nil {
		return fmt.Errorf("failed to marshal set stats: %w", err)
	}
	gameStats, err := json.Marshal(rec.GameStats)
	if err != nil {
		return fmt.Errorf("failed to marshal game stats: %w", err)
	}
	history, err := json.Marshal(rec.MatchHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal match history: %w", err)
	}

	query := `
		INSERT INTO pair_records
			(low_id, high_id, matches_count, low_wins, high_wins,
			 by_surface, by_tier, set_stats, game_stats, match_history,
			 last_match_date, last_match_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (low_id, high_id) DO UPDATE SET
			matches_count = EXCLUDED.matches_count,
			low_wins = EXCLUDED.low_wins,
			high_wins = EXCLUDED.high_wins,
			by_surface = EXCLUDED.by_surface,
			by_tier = EXCLUDED.by_tier,
			set_stats = EXCLUDED.set_stats,
			game_stats = EXCLUDED.game_stats,
			match_history = EXCLUDED.match_history,
			last_match_date = EXCLUDED.last_match_date,
			last_match_id = EXCLUDED.last_match_id,
			updated_at = now()
		RETURNING id, updated_at`

	err = exec.QueryRowContext(ctx, query,
		rec.LowID,
		rec.HighID,
		rec.MatchesCount,
		rec.LowWins,
		rec.HighWins,
		bySurface,
		byTier,
		setStats,
		gameStats,
		history,
		rec.LastMatchDate,
		rec.LastMatchID,
	).Scan(&rec.ID, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save pair record (%d,%d): %w", rec.LowID, rec.HighID, err)
	}
	return nil
}

// ListAll streams every record; used by the orientation repair pass.
func (r *postgresPairRecordRepository) ListAll(ctx context.Context) ([]*models.PairRecord, error) {
	query := `SELECT ` + pairColumns + ` FROM pair_records ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pair records: %w", err)
	}
	defer rows.Close()

	records := make([]*models.PairRecord, 0)
	for rows.Next() {
		rec := &models.PairRecord{}
		if err := scanPairRecord(rows.Scan, rec); err != nil {
			return nil, fmt.Errorf("failed to scan pair record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pair record rows iteration: %w", err)
	}
	return records, nil
}

func scanPairRecord(scan func(dest ...interface{}) error, rec *models.PairRecord) error {
	var bySurface, byTier, setStats, gameStats, history []byte
	err := scan(
		&rec.ID,
		&rec.LowID,
		&rec.HighID,
		&rec.MatchesCount,
		&rec.LowWins,
		&rec.HighWins,
		&bySurface,
		&byTier,
		&setStats,
		&gameStats,
		&history,
		&rec.LastMatchDate,
		&rec.LastMatchID,
		&rec.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if len(bySurface) > 0 {
		if err := json.Unmarshal(bySurface, &rec.BySurface); err != nil {
			return fmt.Errorf("failed to unmarshal surface buckets: %w", err)
		}
	}
	if len(byTier) > 0 {
		if err := json.Unmarshal(byTier, &rec.ByTier); err != nil {
			return fmt.Errorf("failed to unmarshal tier buckets: %w", err)
		}
	}
	if len(setStats) > 0 {
		if err := json.Unmarshal(setStats, &rec.SetStats); err != nil {
			return fmt.Errorf("failed to unmarshal set stats: %w", err)
		}
	}
	if len(gameStats) > 0 {
		if err := json.Unmarshal(gameStats, &rec.GameStats); err != nil {
			return fmt.Errorf("failed to unmarshal game stats: %w", err)
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &rec.MatchHistory); err != nil {
			return fmt.Errorf("failed to unmarshal match history: %w", err)
		}
	}
	return nil
}
