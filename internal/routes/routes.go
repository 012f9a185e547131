package routes

import (
	"net/http"

	"github.com/AnshRaj112/afterthedoll-backend/internal/config"
	"github.com/AnshRaj112/afterthedoll-backend/internal/handlers"
	"github.com/AnshRaj112/afterthedoll-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers bundles everything the router dispatches to.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Users   *handlers.UserHandler
	Journal *handlers.JournalHandler
	Friends *handlers.FriendHandler
	Forum   *handlers.ForumHandler
	AuthMW  *middleware.AuthMiddleware
}

// NewRouter builds the chi router with the middleware stack and all API routes.
func NewRouter(cfg *config.Config, log *zap.Logger, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	SetupRoutes(r, h)
	return r
}

func SetupRoutes(r chi.Router, h Handlers) {
	r.Route("/api", func(api chi.Router) {
		// Public auth routes
		api.Post("/auth/signup", h.Auth.Signup)
		api.Post("/auth/signin", h.Auth.Signin)
		api.Post("/auth/check-username", h.Auth.CheckUsername)

		// Readable anonymously; a signed-in caller may see more
		api.Group(func(pub chi.Router) {
			pub.Use(h.AuthMW.Optional)
			pub.Get("/users/{username}", h.Users.Profile)
			pub.Get("/archives/{archiveID}", h.Journal.GetArchive)
			pub.Get("/entries/{entryID}", h.Journal.GetEntry)
			pub.Get("/entries/{entryID}/comments", h.Journal.ListComments)
			pub.Get("/forum/categories", h.Forum.ListCategories)
			pub.Get("/forum/categories/{categoryID}/threads", h.Forum.ListThreads)
			pub.Get("/forum/threads/{threadID}", h.Forum.GetThread)
		})

		api.Group(func(pr chi.Router) {
			pr.Use(h.AuthMW.RequireAuth)

			pr.Post("/auth/signout", h.Auth.Signout)
			pr.Get("/auth/me", h.Auth.Me)

			pr.Put("/settings", h.Users.UpdateSettings)
			pr.Post("/settings/avatar", h.Users.UploadAvatar)

			pr.Get("/dashboard", h.Journal.Dashboard)

			pr.Get("/archives", h.Journal.ListArchives)
			pr.Post("/archives", h.Journal.CreateArchive)
			pr.Put("/archives/{archiveID}", h.Journal.UpdateArchive)
			pr.Delete("/archives/{archiveID}", h.Journal.DeleteArchive)

			pr.Post("/entries", h.Journal.CreateEntry)
			pr.Put("/entries/{entryID}", h.Journal.UpdateEntry)
			pr.Delete("/entries/{entryID}", h.Journal.DeleteEntry)
			pr.Post("/entries/{entryID}/comments", h.Journal.AddComment)

			pr.Get("/friends", h.Friends.ListFriends)
			pr.Get("/friends/requests", h.Friends.PendingRequests)
			pr.Post("/friends/requests", h.Friends.SendRequest)
			pr.Post("/friends/requests/{requestID}/respond", h.Friends.Respond)

			pr.Post("/forum/threads", h.Forum.CreateThread)
			pr.Post("/forum/threads/{threadID}/replies", h.Forum.Reply)
		})
	})
}
