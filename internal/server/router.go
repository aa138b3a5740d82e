package server

import (
	"net/http"

	"github.com/maruel/colldb/internal/auth"
	"github.com/maruel/colldb/internal/server/handlers"
	"github.com/maruel/colldb/internal/server/ratelimit"
	"github.com/maruel/colldb/internal/storage"
)

// Config carries the collaborators the router needs.
type Config struct {
	Users         *storage.UserService
	Collections   *storage.CollectionService
	Search        *storage.SearchService
	Authenticator *auth.Authenticator
	// AuthLimiter limits login/register attempts per client IP. Nil disables.
	AuthLimiter *ratelimit.Limiter
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := handlers.NewAuthHandler(cfg.Users, cfg.Authenticator)
	userHandler := handlers.NewUserHandler(cfg.Users)
	collectionHandler := handlers.NewCollectionHandler(cfg.Collections)
	itemHandler := handlers.NewItemHandler(cfg.Collections)
	searchHandler := handlers.NewSearchHandler(cfg.Search)

	authed := AuthMiddleware(cfg.Authenticator)
	limited := ratelimit.Middleware(cfg.AuthLimiter)

	// Health check
	mux.Handle("GET /api/health", Wrap(handlers.Health))

	// Users endpoints
	mux.Handle("POST /api/users/register", limited(Wrap(authHandler.Register)))
	mux.Handle("POST /api/users/login", limited(Wrap(authHandler.Login)))
	mux.Handle("GET /api/users/me", authed(Wrap(authHandler.Me)))
	mux.Handle("GET /api/users", authed(Wrap(userHandler.ListUsers)))

	// Collections endpoints
	mux.Handle("POST /api/collections", authed(Wrap(collectionHandler.CreateCollection)))
	mux.Handle("GET /api/collections", Wrap(collectionHandler.ListCollections))
	mux.Handle("GET /api/collections/user", authed(Wrap(collectionHandler.ListMyCollections)))
	mux.Handle("PUT /api/collections/{id}", authed(Wrap(collectionHandler.UpdateCollection)))
	mux.Handle("DELETE /api/collections/{id}", authed(Wrap(collectionHandler.DeleteCollection)))

	// Items endpoints
	mux.Handle("POST /api/collections/{id}/items", authed(Wrap(itemHandler.AddItem)))
	mux.Handle("GET /api/collections/{id}/items/{itemId}", Wrap(itemHandler.GetItem))
	mux.Handle("PUT /api/collections/{id}/items/{itemId}", authed(Wrap(itemHandler.UpdateItem)))
	mux.Handle("DELETE /api/collections/{id}/items/{itemId}", authed(Wrap(itemHandler.DeleteItem)))

	// Search endpoint
	mux.Handle("GET /api/search", Wrap(searchHandler.Search))

	root := http.NewServeMux()
	root.Handle("/", LogMiddleware(mux))
	// The websocket route bypasses the logging wrapper: the upgrade needs
	// the raw http.Hijacker from the underlying ResponseWriter.
	root.Handle("GET /ws", NewCommentChannel(cfg.Authenticator, cfg.Collections))
	return root
}
