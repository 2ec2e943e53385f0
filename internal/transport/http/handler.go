package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
	"github.com/nattawatt/canteen-cancellation/internal/workflow"
)

// Handler serves the operator-console API over the session manager. The
// console renders the returned snapshots; it contains no workflow logic.
type Handler struct {
	sessions *workflow.Manager
	validate *validatorv10.Validate
	logger   *log.Entry
}

// NewHandler builds the HTTP handler.
func NewHandler(sessions *workflow.Manager, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}
	return &Handler{
		sessions: sessions,
		validate: newValidator(),
		logger:   logger,
	}
}

// Register attaches the routes to the engine.
func (h *Handler) Register(r *gin.Engine) {
	v1 := r.Group("/v1")
	v1.POST("/orders/:order_id/shops/:shop_id/cancellation", h.openSession)
	v1.GET("/cancellations/:session_id", h.getSession)
	v1.POST("/cancellations/:session_id/events", h.applyEvent)
	v1.DELETE("/cancellations/:session_id", h.abandonSession)
}

func (h *Handler) openSession(c *gin.Context) {
	var req openSessionRequest
	if err := bindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	ctrl, err := h.sessions.Open(c.Request.Context(), c.Param("order_id"), c.Param("shop_id"), req.OperatorID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionView(ctrl))
}

func (h *Handler) getSession(c *gin.Context) {
	ctrl, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionView(ctrl))
}

func (h *Handler) applyEvent(c *gin.Context) {
	ctrl, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	var req eventRequest
	if err := bindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	event, err := toEvent(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_event", "msg": err.Error()})
		return
	}

	if err := ctrl.Apply(c.Request.Context(), event); err != nil {
		// The snapshot still moves forward for inline errors, so return it
		// alongside the mapped status.
		status, code := statusFor(err)
		c.JSON(status, gin.H{
			"error":   code,
			"msg":     err.Error(),
			"session": toSessionView(ctrl),
		})
		return
	}
	c.JSON(http.StatusOK, toSessionView(ctrl))
}

func (h *Handler) abandonSession(c *gin.Context) {
	if err := h.sessions.Abandon(c.Param("session_id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toEvent(req eventRequest) (workflow.Event, error) {
	switch req.Type {
	case "select_reason":
		return workflow.SelectReason{Reason: workflow.ReasonID(req.Reason)}, nil
	case "set_custom_reason":
		return workflow.SetCustomReason{Text: req.Text}, nil
	case "toggle_item":
		return workflow.ToggleItem{ItemID: req.ItemID}, nil
	case "set_reopen_time":
		return workflow.SetReopenTime{Time: req.ReopenTime}, nil
	case "set_closure":
		event := workflow.SetClosure{Choice: workflow.ClosureChoice(req.Choice)}
		if req.Until != "" {
			until, err := time.ParseInLocation("2006-01-02", req.Until, time.Local)
			if err != nil {
				return nil, err
			}
			event.Until = until
		}
		return event, nil
	case "advance":
		return workflow.Advance{}, nil
	case "back":
		return workflow.Back{}, nil
	case "confirm":
		return workflow.Confirm{}, nil
	default:
		return nil, domain.ErrInvalidTransition
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed")
	}
	c.JSON(status, gin.H{"error": code, "msg": err.Error()})
}

// statusFor maps the workflow error taxonomy onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrSubOrderNotFound),
		errors.Is(err, domain.ErrShopNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrSubmitInFlight):
		return http.StatusConflict, "in_flight"
	case errors.Is(err, domain.ErrSessionFinished),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case domain.IsPrecondition(err):
		return http.StatusConflict, "not_cancellable"
	case domain.IsValidation(err):
		return http.StatusUnprocessableEntity, "validation"
	case domain.IsEffector(err):
		return http.StatusBadGateway, "effector_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
