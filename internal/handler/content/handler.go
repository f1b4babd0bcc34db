package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zhouzirui/scribe/backend/internal/logger"
	contentModel "github.com/zhouzirui/scribe/backend/internal/model/content"
	"github.com/zhouzirui/scribe/backend/internal/upstream"
	"github.com/zhouzirui/scribe/backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// Generator is the content relay the handler delegates to.
type Generator interface {
	Generate(ctx context.Context, req contentModel.Request) (contentModel.Generated, error)
	Stream(ctx context.Context, req contentModel.Request, onDelta func(string) error) (contentModel.Generated, error)
}

// Handler serves the content generation endpoints.
type Handler struct {
	generator Generator
	log       logger.Logger
	validate  *validator.Validate
}

// New creates the content handler.
func New(generator Generator, log logger.Logger) *Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	return &Handler{
		generator: generator,
		log:       log.With(logger.String("handler", "content")),
		validate:  validate,
	}
}

// RegisterRoutes mounts the generation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/generate", h.handleGenerate)
	r.Post("/generate/stream", h.handleGenerateStream)
}

// generatePayload mirrors contentModel.Request with pointers so that presence can
// be told apart from empty values.
type generatePayload struct {
	Topic  *string `json:"topic" validate:"required"`
	Type   *string `json:"type" validate:"required"`
	Length *int    `json:"length"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	generated, err := h.generator.Generate(r.Context(), req)
	if err != nil {
		utils.RespondUpstreamError(w, h.log, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, generated)
}

func (h *Handler) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	started := false
	begin := func() error {
		if started {
			return nil
		}
		started = true
		utils.SetupSSEHeaders(w)
		w.WriteHeader(http.StatusOK)
		return utils.SendSSEEvent(w, flusher, "start", map[string]string{"type": req.Type, "topic": req.Topic})
	}

	generated, err := h.generator.Stream(r.Context(), req, func(delta string) error {
		if err := begin(); err != nil {
			return err
		}
		return utils.SendSSEEvent(w, flusher, "delta", contentModel.Generated{Content: delta})
	})
	if err != nil {
		if !started {
			utils.RespondUpstreamError(w, h.log, err)
			return
		}
		if _, isUpstream := upstream.AsFailure(err); !isUpstream {
			// The client went away; nothing left to write to.
			h.log.Warn("stream aborted", logger.Error(err))
			return
		}
		h.log.Error("stream interrupted", logger.Error(err))
		if sendErr := utils.SendSSEEvent(w, flusher, "error", utils.ErrorBody{Detail: err.Error()}); sendErr != nil {
			h.log.Warn("failed to send error event", logger.Error(sendErr))
		}
		return
	}

	if err := begin(); err != nil {
		h.log.Warn("stream aborted", logger.Error(err))
		return
	}
	if err := utils.SendSSEEvent(w, flusher, "message", generated); err != nil {
		h.log.Warn("failed to send message event", logger.Error(err))
		return
	}
	if err := utils.SendSSEEvent(w, flusher, "end", map[string]bool{"finished": true}); err != nil {
		h.log.Warn("failed to send end event", logger.Error(err))
	}
}

// decodeRequest parses and validates the body, writing a 422 on failure.
// A missing or null length falls back to contentModel.DefaultLength.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (contentModel.Request, bool) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	var payload generatePayload
	err := dec.Decode(&payload)
	if err == nil {
		// Anything after the object makes the body invalid.
		if extra := dec.Decode(&struct{}{}); !errors.Is(extra, io.EOF) {
			err = errors.New("unexpected data after JSON object")
		}
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return contentModel.Request{}, false
		}
		utils.RespondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request body: %v", err))
		return contentModel.Request{}, false
	}

	if err := h.validate.Struct(payload); err != nil {
		utils.RespondError(w, http.StatusUnprocessableEntity, describeValidation(err))
		return contentModel.Request{}, false
	}

	req := contentModel.Request{
		Topic:  *payload.Topic,
		Type:   *payload.Type,
		Length: contentModel.DefaultLength,
	}
	if payload.Length != nil {
		req.Length = *payload.Length
	}
	return req, true
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}
