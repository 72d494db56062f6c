package routes

import (
	"net/http"
	"time"

	_ "github.com/Dosada05/clash-teams/docs"
	"github.com/Dosada05/clash-teams/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

const requestTimeout = 15 * time.Second

func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	teamHandler *handlers.TeamHandler,
	tentativeHandler *handlers.TentativeHandler,
	tournamentHandler *handlers.TournamentHandler,
	profileHandler *handlers.ProfileHandler,
	exportHandler *handlers.ExportHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Websockets are long-lived and stay outside the request timeout.
	router.Get("/ws/servers/{server}", webSocketHandler.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(requestTimeout))

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.List)
			r.Post("/", tournamentHandler.Create)
		})

		r.Route("/servers/{server}", func(r chi.Router) {
			r.Get("/teams", teamHandler.ListServerTeams)
			r.Get("/tentative", tentativeHandler.ListForServer)
			r.Post("/exports", exportHandler.ExportRoster)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Post("/register", teamHandler.Register)
			r.Post("/join", teamHandler.Join)
			r.Post("/unregister", teamHandler.Unregister)
		})

		r.Route("/v2/teams", func(r chi.Router) {
			r.Post("/register", teamHandler.RegisterV2)
			r.Post("/join", teamHandler.JoinV2)
			r.Post("/unregister", teamHandler.UnregisterV2)
		})

		r.Post("/tentative", tentativeHandler.Toggle)
		r.Put("/players/{playerID}", profileHandler.Upsert)
	})
}
