package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"application-builder/internal/builder/steps"
	"application-builder/internal/builder/templates"
	"application-builder/internal/builder/wizard"
	"application-builder/internal/models"
)

const defaultEventsLimit = 100

const maxBodyBytes = 1 << 20

// decode reads and validates a JSON body. It writes the 400 itself and
// reports whether the handler may continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, fmt.Errorf("%w: %v", errInvalidBody, err))
		return false
	}
	if err := s.validator.Struct(dst); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(errorCode(errInvalidBody)),
			Details: extractValidationErrors(err),
		})
		return false
	}
	return true
}

func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{"templates": templates.All()})
}

func (s *Server) handleListPortfolio(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{"items": s.ranker.Ranked()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !s.decode(w, r, &req) {
		return
	}

	sess, err := s.manager.Create(r.Context(), req.JobID, req.UserName, req.StudentID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, newSessionResponse(sess.ID, sess.Controller))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newSessionResponse(sess.ID, sess.Controller))
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Cancel(r.Context(), r.PathValue("id")); err != nil {
		s.errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mutate runs fn on the session and answers with its new state.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(c *wizard.Controller) error) {
	sess, err := s.manager.Do(r.Context(), r.PathValue("id"), fn)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newSessionResponse(sess.ID, sess.Controller))
}

func (s *Server) handleSelectTemplate(w http.ResponseWriter, r *http.Request) {
	var req SelectTemplateRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.mutate(w, r, func(c *wizard.Controller) error {
		return c.SelectTemplate(req.TemplateID)
	})
}

func (s *Server) handleEditCoverLetter(w http.ResponseWriter, r *http.Request) {
	var req CoverLetterRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.mutate(w, r, func(c *wizard.Controller) error {
		return c.Apply(steps.CoverLetterEdited{Text: *req.CoverLetter})
	})
}

func (s *Server) handleTogglePortfolioItem(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemId")
	s.mutate(w, r, func(c *wizard.Controller) error {
		return c.Apply(steps.PortfolioItemToggled{ID: itemID})
	})
}

func (s *Server) handleEditNotes(w http.ResponseWriter, r *http.Request) {
	var req NotesRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.mutate(w, r, func(c *wizard.Controller) error {
		return c.Apply(steps.NotesEdited{Text: *req.AdditionalNotes})
	})
}

func (s *Server) handleAttachResume(w http.ResponseWriter, r *http.Request) {
	var req ResumeRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.mutate(w, r, func(c *wizard.Controller) error {
		return c.Apply(steps.ResumeAttached{Resume: req.CustomResume})
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(c *wizard.Controller) error {
		_, err := c.Next()
		return err
	})
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(c *wizard.Controller) error {
		_, err := c.Previous()
		return err
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, _, err := s.manager.Submit(submitContext(r), r.PathValue("id"))
	if err != nil {
		// the notices are reported here, not on the next read of the session
		var notices []models.Notice
		if sess != nil {
			notices = sess.Controller.DrainNotices()
		}
		s.errorResponse(w, err, notices...)
		return
	}
	s.jsonResponse(w, http.StatusOK, newSessionResponse(sess.ID, sess.Controller))
}

func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	var req UpdateApplicationRequest
	if !s.decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	resp, err := s.applications.Update(submitContext(r), id, models.UpdateApplicationRequest(req))
	s.applicationResponse(w, "update", id, resp, err)
}

func (s *Server) handleWithdrawApplication(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	resp, err := s.applications.Withdraw(submitContext(r), id)
	s.applicationResponse(w, "withdraw", id, resp, err)
}

// applicationResponse relays the application service answer. Rejections and
// transport failures are both reported as SUBMISSION_FAILED.
func (s *Server) applicationResponse(w http.ResponseWriter, action, id string, resp *models.ApiResponse, err error) {
	if err != nil {
		s.logger.Error("application "+action+" failed", map[string]interface{}{"applicationId": id, "error": err.Error()})
		s.errorResponse(w, &wizard.SubmissionError{Message: "Failed to " + action + " application"})
		return
	}
	if resp == nil || !resp.Success {
		msg := "Failed to " + action + " application"
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		s.errorResponse(w, &wizard.SubmissionError{Message: msg})
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyticsEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.errorResponse(w, fmt.Errorf("%w: limit must be a positive integer", errInvalidBody))
			return
		}
		limit = n
	}

	events, err := s.tracker.Recent(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{"events": events})
}
