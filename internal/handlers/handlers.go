package handlers

import (
	"github.com/safehaven/backend/internal/auth"
	"gorm.io/gorm"
)

// Handlers contains all HTTP handlers for the API. The store handle and auth
// service are injected at startup; nothing here reads ambient globals.
type Handlers struct {
	db   *gorm.DB
	auth *auth.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(db *gorm.DB, authService *auth.Service) *Handlers {
	return &Handlers{
		db:   db,
		auth: authService,
	}
}
