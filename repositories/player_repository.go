package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/NicoMontoya/tennisworld/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context, limit, offset int) ([]*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, first_name, last_name, country, plays, current_rank,
	ranking_points, birth_date, photo_key, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (first_name, last_name, country, plays, current_rank, ranking_points, birth_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		player.FirstName,
		player.LastName,
		player.Country,
		player.Plays,
		player.CurrentRank,
		player.RankingPoints,
		player.BirthDate,
	).Scan(&player.ID, &player.CreatedAt)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	var player models.Player
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID,
		&player.FirstName,
		&player.LastName,
		&player.Country,
		&player.Plays,
		&player.CurrentRank,
		&player.RankingPoints,
		&player.BirthDate,
		&player.PhotoKey,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player %d: %w", id, err)
	}
	return &player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, limit, offset int) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + `
		FROM players
		ORDER BY current_rank NULLS LAST, id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var player models.Player
		if err := rows.Scan(
			&player.ID,
			&player.FirstName,
			&player.LastName,
			&player.Country,
			&player.Plays,
			&player.CurrentRank,
			&player.RankingPoints,
			&player.BirthDate,
			&player.PhotoKey,
			&player.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, &player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	query := `
		UPDATE players
		SET first_name = $1, last_name = $2, country = $3, plays = $4,
		    current_rank = $5, ranking_points = $6, birth_date = $7, photo_key = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		player.FirstName,
		player.LastName,
		player.Country,
		player.Plays,
		player.CurrentRank,
		player.RankingPoints,
		player.BirthDate,
		player.PhotoKey,
		player.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
