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
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict")
)

type TournamentFilter struct {
	Status *models.TournamentStatus
	Tier   *models.Tier
}

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter TournamentFilter) ([]*models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerID int) error
	ListDueForStatusChange(ctx context.Context, now time.Time) ([]*models.Tournament, error)
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, description, surface, tier, organizer_id, location,
	start_date, end_date, status, draw_size, winner_id, logo_key, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, description, surface, tier, organizer_id, location, start_date, end_date, status, draw_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name,
		t.Description,
		t.Surface,
		t.Tier,
		t.OrganizerID,
		t.Location,
		t.StartDate,
		t.EndDate,
		t.Status,
		t.DrawSize,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" && pqErr.Constraint == "tournaments_name_key" {
			return ErrTournamentNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := scanTournament(r.db.QueryRowContext(ctx, query, id).Scan, t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter TournamentFilter) ([]*models.Tournament, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`)

	args := []interface{}{}
	placeholder := 1

	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Status)
		placeholder++
	}
	if filter.Tier != nil {
		queryBuilder.WriteString(" AND tier = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Tier)
	}
	queryBuilder.WriteString(" ORDER BY start_date DESC, id DESC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t := &models.Tournament{}
		if err := scanTournament(rows.Scan, t); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments
		SET name = $1, description = $2, surface = $3, tier = $4, location = $5,
		    start_date = $6, end_date = $7, status = $8, draw_size = $9, logo_key = $10
		WHERE id = $11`

	result, err := r.db.ExecContext(ctx, query,
		t.Name,
		t.Description,
		t.Surface,
		t.Tier,
		t.Location,
		t.StartDate,
		t.EndDate,
		t.Status,
		t.DrawSize,
		t.LogoKey,
		t.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	result, err := exec.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerID int) error {
	result, err := exec.ExecContext(ctx, `UPDATE tournaments SET winner_id = $1 WHERE id = $2`, winnerID, id)
	if err != nil {
		return fmt.Errorf("failed to set winner of tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// ListDueForStatusChange returns tournaments whose dates have crossed their
// current status: announced tournaments that should be active, and active
// tournaments that should be completed.
func (r *postgresTournamentRepository) ListDueForStatusChange(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE (status IN ($1, $2) AND start_date <= $3)
		   OR (status = $4 AND end_date < $3)`

	rows, err := r.db.QueryContext(ctx, query,
		models.StatusSoon, models.StatusRegistration, now, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t := &models.Tournament{}
		if err := scanTournament(rows.Scan, t); err != nil {
			return nil, fmt.Errorf("failed to scan due tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during due tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func scanTournament(scan func(dest ...interface{}) error, t *models.Tournament) error {
	return scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Surface,
		&t.Tier,
		&t.OrganizerID,
		&t.Location,
		&t.StartDate,
		&t.EndDate,
		&t.Status,
		&t.DrawSize,
		&t.WinnerID,
		&t.LogoKey,
		&t.CreatedAt,
	)
}
