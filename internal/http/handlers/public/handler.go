package public

import "github.com/plpainel/tokenapi/internal/provider"

// Handler public API handler entry
type Handler struct {
	*provider.Container
}

// New creates the public handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
