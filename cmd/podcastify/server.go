package main

import (
	"database/sql"
	"net/http"

	"podcastify/internal/app/playlists"
	"podcastify/internal/httpapi"
	"podcastify/internal/store"
	"podcastify/shared/go/auth"
	"podcastify/shared/go/config"
	"podcastify/shared/go/middleware"
)

func newHTTPHandler(cfg *config.Config, db *sql.DB) http.Handler {
	dataStore := store.New(db)
	playlistSvc := playlists.New(dataStore, cfg.Playlists.Limit)
	tokens := auth.NewTokenManager(cfg.Security.JWTSecret)

	var handler http.Handler = httpapi.New(playlistSvc, tokens).Routes()
	handler = middleware.CORS(cfg.CORS.AllowedOrigins)(handler)
	handler = middleware.Recovery()(handler)
	handler = middleware.RequestLogging()(handler)
	return handler
}
