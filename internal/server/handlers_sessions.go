package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kevinlin/planning-poker/internal/domain"
	apperrors "github.com/kevinlin/planning-poker/internal/errors"
	"github.com/kevinlin/planning-poker/internal/poker"
)

type createSessionRequest struct {
	JiraKey string `json:"jiraKey"`
	Title   string `json:"title"`
}

type joinSessionRequest struct {
	Name string `json:"name"`
}

type voteRequest struct {
	ParticipantID string `json:"participantId"`
	Value         *int   `json:"value"`
}

type actionRequest struct {
	Action        string `json:"action"`
	ParticipantID string `json:"participantId,omitempty"`
	Estimate      *int   `json:"estimate,omitempty"`
}

type joinResponse struct {
	Session     *domain.Session     `json:"session"`
	Participant *domain.Participant `json:"participant"`
}

// sessionDetail decorates a session with the read-only advisories so polling
// clients can render stats and the finalize shortcut in one round trip.
type sessionDetail struct {
	*domain.Session
	Stats             poker.VoteStats `json:"stats"`
	SuggestedEstimate *int            `json:"suggestedEstimate,omitempty"`
}

type sessionSummary struct {
	Code             string        `json:"code"`
	JiraKey          string        `json:"jiraKey"`
	Title            string        `json:"title"`
	Status           domain.Status `json:"status"`
	ParticipantCount int           `json:"participantCount"`
	FinalEstimate    *int          `json:"finalEstimate,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
}

func newSessionDetail(session *domain.Session) sessionDetail {
	detail := sessionDetail{
		Session: session,
		Stats:   poker.Stats(session),
	}
	if suggestion, ok := poker.SuggestEstimate(session); ok {
		detail.SuggestedEstimate = &suggestion
	}
	return detail
}

func sessionCode(c echo.Context) string {
	return strings.ToUpper(strings.TrimSpace(c.Param("code")))
}

func (s *Server) handleCreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	session, err := s.engine.CreateSession(c.Request().Context(), req.JiraKey, req.Title)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusCreated, session); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListSessions(c echo.Context) error {
	sessions, err := s.engine.ListSessions(c.Request().Context())
	if err != nil {
		return err
	}

	summaries := make([]sessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, sessionSummary{
			Code:             session.Code,
			JiraKey:          session.JiraKey,
			Title:            session.Title,
			Status:           session.Status,
			ParticipantCount: len(session.Participants),
			FinalEstimate:    session.FinalEstimate,
			CreatedAt:        session.CreatedAt,
		})
	}

	if err := c.JSON(http.StatusOK, summaries); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetSession(c echo.Context) error {
	session, err := s.engine.GetSession(c.Request().Context(), sessionCode(c))
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, newSessionDetail(session)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	if err := s.engine.DeleteSession(c.Request().Context(), sessionCode(c)); err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, map[string]string{"message": "session deleted"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleJoinSession(c echo.Context) error {
	var req joinSessionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	session, participant, err := s.engine.Join(c.Request().Context(), sessionCode(c), req.Name)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, joinResponse{Session: session, Participant: participant}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleSubmitVote(c echo.Context) error {
	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.ParticipantID == "" || req.Value == nil {
		return apperrors.ValidationError("participant id and vote value are required")
	}

	session, err := s.engine.SubmitVote(c.Request().Context(), sessionCode(c), req.ParticipantID, *req.Value)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, newSessionDetail(session)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleSessionAction(c echo.Context) error {
	var req actionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	ctx := c.Request().Context()
	code := sessionCode(c)

	var (
		session *domain.Session
		err     error
	)
	switch req.Action {
	case "reveal":
		session, err = s.engine.Reveal(ctx, code)

	case "finalize":
		if req.Estimate == nil {
			return apperrors.ValidationError("estimate is required")
		}
		session, err = s.engine.Finalize(ctx, code, *req.Estimate)

	case "reset":
		session, err = s.engine.Reset(ctx, code)

	case "remove_participant":
		if req.ParticipantID == "" {
			return apperrors.ValidationError("participant id is required")
		}
		var deleted bool
		session, deleted, err = s.engine.RemoveParticipant(ctx, code, req.ParticipantID)
		if err != nil {
			return err
		}
		if deleted {
			if err := c.JSON(http.StatusOK, map[string]bool{"deleted": true}); err != nil {
				return fmt.Errorf("failed to send JSON response: %w", err)
			}
			return nil
		}

	case "update_activity":
		if req.ParticipantID == "" {
			return apperrors.ValidationError("participant id is required")
		}
		session, err = s.engine.TouchActivity(ctx, code, req.ParticipantID)

	default:
		return apperrors.ValidationError("invalid action").WithField("action", req.Action)
	}
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, newSessionDetail(session)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
