package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"animeverse/internal/logging"
	"animeverse/internal/media"
	"animeverse/internal/metrics"
	"animeverse/internal/recommend"
	"animeverse/internal/services"
	"animeverse/internal/session"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Sessions: s.registry.Len()})
}

func (s *Server) handleParse(c *gin.Context) {
	var req ParseRequest
	if err := bindJSON(c, &req, false); err != nil {
		s.writeError(c, err)
		return
	}
	doc := recommend.Parse(req.Text)
	metrics.RecordParse(len(doc.Top), len(doc.HiddenGems), doc.Empty())
	c.JSON(http.StatusOK, ParseResponse{
		Document: doc,
		Empty:    doc.Empty(),
		Top:      media.Cards(doc.Top),
		Gems:     media.Cards(doc.HiddenGems),
	})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var prefs session.Preferences
	if err := bindJSON(c, &prefs, true); err != nil {
		s.writeError(c, err)
		return
	}
	state := s.chat.NewState("")
	if err := s.chat.Start(state, prefs); err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.registry.Add(state); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state.Snapshot())
}

func (s *Server) handleGetSession(c *gin.Context) {
	var snap session.Snapshot
	err := s.registry.With(c.Param("id"), func(state *session.State) error {
		snap = state.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.registry.Remove(c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleResetSession starts a session over with the preferences in the body
// (defaults when the body is empty), keeping its id.
func (s *Server) handleResetSession(c *gin.Context) {
	var prefs session.Preferences
	if err := bindJSON(c, &prefs, true); err != nil {
		s.writeError(c, err)
		return
	}
	var snap session.Snapshot
	err := s.registry.With(c.Param("id"), func(state *session.State) error {
		if err := s.chat.Restart(state, prefs); err != nil {
			return err
		}
		snap = state.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleSendMessage(c *gin.Context) {
	var req MessageRequest
	if err := bindJSON(c, &req, false); err != nil {
		s.writeError(c, err)
		return
	}
	ctx := services.WithSessionID(c.Request.Context(), c.Param("id"))

	var resp MessageResponse
	err := s.registry.With(c.Param("id"), func(state *session.State) error {
		reply, replied, err := s.chat.Send(ctx, state, req.Content, nil)
		if err != nil {
			return err
		}
		resp = MessageResponse{Reply: reply, Replied: replied, Session: state.Snapshot()}
		return nil
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRecommendations(c *gin.Context) {
	ctx := services.WithSessionID(c.Request.Context(), c.Param("id"))

	var resp RecommendationsResponse
	err := s.registry.With(c.Param("id"), func(state *session.State) error {
		result, err := s.chat.Recommend(ctx, state)
		if err != nil {
			return err
		}
		resp = RecommendationsResponse{
			Result:  result,
			Empty:   result.Document.Empty(),
			Session: state.Snapshot(),
		}
		return nil
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// bindJSON decodes the request body into target. With allowEmpty an absent
// body leaves target untouched.
func bindJSON(c *gin.Context, target any, allowEmpty bool) error {
	err := c.ShouldBindJSON(target)
	switch {
	case err == nil:
		return nil
	case allowEmpty && errors.Is(err, io.EOF):
		return nil
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return services.Wrap(services.ErrValidation, "api", "decode body", "request body too large", nil)
		}
		return services.Wrap(services.ErrValidation, "api", "decode body", "invalid JSON body", err)
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.WithContext(c.Request.Context(), s.logger).Warn("request failed",
			logging.String("route", c.FullPath()),
			logging.String(logging.FieldEventType, "api_request_failed"),
			logging.Error(err),
		)
	}
	c.JSON(status, ErrorResponse{Error: services.Kind(err), Message: err.Error()})
}
