package models

import "time"

// TournamentStatus mirrors the ENUM in the database.
type TournamentStatus string

const (
	StatusSoon         TournamentStatus = "soon"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

// Surface is the court surface a tournament (and its matches) is played on.
type Surface string

const (
	SurfaceHard   Surface = "hard"
	SurfaceClay   Surface = "clay"
	SurfaceGrass  Surface = "grass"
	SurfaceCarpet Surface = "carpet"
)

// Tier is the competition category used to bucket pairwise statistics.
type Tier string

const (
	TierGrandSlam  Tier = "grand_slam"
	TierMasters    Tier = "masters"
	TierATP500     Tier = "atp_500"
	TierATP250     Tier = "atp_250"
	TierChallenger Tier = "challenger"
)

type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description *string          `json:"description,omitempty" db:"description"`
	Surface     Surface          `json:"surface" db:"surface"`
	Tier        Tier             `json:"tier" db:"tier"`
	OrganizerID int              `json:"organizer_id" db:"organizer_id"`
	Location    *string          `json:"location,omitempty" db:"location"`
	StartDate   time.Time        `json:"start_date" db:"start_date"`
	EndDate     time.Time        `json:"end_date" db:"end_date"`
	Status      TournamentStatus `json:"status" db:"status"`
	DrawSize    int              `json:"draw_size" db:"draw_size"`
	WinnerID    *int             `json:"winner_id,omitempty" db:"winner_id"`
	LogoKey     *string          `json:"-" db:"logo_key"`
	LogoURL     *string          `json:"logo_url,omitempty" db:"-"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	// Optional linked data, populated by services.
	Organizer *User   `json:"organizer,omitempty" db:"-"`
	Matches   []Match `json:"matches,omitempty" db:"-"`
}
