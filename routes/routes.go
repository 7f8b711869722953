package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/NicoMontoya/tennisworld/handlers"
	"github.com/NicoMontoya/tennisworld/middleware"
	"github.com/NicoMontoya/tennisworld/models"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Player      *handlers.PlayerHandler
	Tournament  *handlers.TournamentHandler
	Match       *handlers.MatchHandler
	HeadToHead  *handlers.HeadToHeadHandler
	Prediction  *handlers.PredictionHandler
	Bracket     *handlers.BracketHandler
	Leaderboard *handlers.LeaderboardHandler
	WebSocket   *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, jwtSecret string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))
	organizerOnly := middleware.Authorize(models.RoleOrganizer, models.RoleAdmin)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)
	router.Get("/auth/confirm", h.Auth.ConfirmEmail)

	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", h.User.GetProfile)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", h.User.GetCurrentUser)
			r.Patch("/me", h.User.UpdateProfile)
			r.Put("/me/password", h.User.ChangePassword)
			r.Put("/me/avatar", h.User.UploadAvatar)
			r.Delete("/{userID}", h.User.DeleteUser)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/", h.Player.List)
		r.Get("/{playerID}", h.Player.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Post("/", h.Player.Create)
			r.Put("/{playerID}", h.Player.Update)
			r.Put("/{playerID}/photo", h.Player.UploadPhoto)
			r.Delete("/{playerID}", h.Player.Delete)
		})
	})

	router.Get("/players/{playerA}/vs/{playerB}", h.HeadToHead.Get)
	router.With(authenticate, adminOnly).Post("/head-to-head/repair", h.HeadToHead.Repair)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.Get("/{tournamentID}", h.Tournament.Get)
		r.Get("/{tournamentID}/matches", h.Match.ListByTournament)
		r.Get("/{tournamentID}/leaderboard", h.Leaderboard.Tournament)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{tournamentID}/brackets", h.Bracket.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)
			r.Post("/", h.Tournament.Create)
			r.Patch("/{tournamentID}", h.Tournament.Update)
			r.Put("/{tournamentID}/status", h.Tournament.ChangeStatus)
			r.Put("/{tournamentID}/logo", h.Tournament.UploadLogo)
			r.Delete("/{tournamentID}", h.Tournament.Delete)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.Match.Get)
		r.Get("/{matchID}/predictions", h.Prediction.ListByMatch)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)
			r.Post("/", h.Match.Create)
			r.Post("/{matchID}/complete", h.Match.Complete)
		})
	})

	router.Route("/predictions", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/", h.Prediction.Create)
		r.Get("/mine", h.Prediction.ListMine)
		r.Get("/{predictionID}", h.Prediction.Get)
	})

	router.Route("/brackets", func(r chi.Router) {
		r.Get("/{bracketID}", h.Bracket.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Put("/{bracketID}/picks", h.Bracket.SetPick)
			r.Put("/{bracketID}/champion", h.Bracket.SetChampion)
			r.Post("/{bracketID}/submit", h.Bracket.Submit)
		})
	})

	router.Route("/leaderboards", func(r chi.Router) {
		r.Get("/monthly", h.Leaderboard.Monthly)
		r.Get("/season", h.Leaderboard.Season)
		r.Get("/all-time", h.Leaderboard.AllTime)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeTournament)
	router.Get("/ws/leaderboard", h.WebSocket.ServeLeaderboard)

	return router
}
