package checkout

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/scribe/backend/internal/logger"
	billingModel "github.com/zhouzirui/scribe/backend/internal/model/billing"
	"github.com/zhouzirui/scribe/backend/pkg/utils"
)

// SessionCreator creates hosted checkout sessions.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context) (billingModel.Session, error)
}

// Handler serves the checkout endpoint.
type Handler struct {
	sessions SessionCreator
	log      logger.Logger
}

// New creates the checkout handler.
func New(sessions SessionCreator, log logger.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		log:      log.With(logger.String("handler", "checkout")),
	}
}

// RegisterRoutes mounts the checkout route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/create-checkout-session", h.handleCreateSession)
}

// handleCreateSession takes no input; any request body is ignored.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.CreateCheckoutSession(r.Context())
	if err != nil {
		utils.RespondUpstreamError(w, h.log, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}
