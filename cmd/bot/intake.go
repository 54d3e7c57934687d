package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Jacobbrewer1/gavel/pkg/dataaccess"
	"github.com/Jacobbrewer1/gavel/pkg/entities"
	"github.com/Jacobbrewer1/gavel/pkg/logging"
)

const (
	// answerMinLen and answerMaxLen bound the length of a single answer on
	// the appeal form.
	answerMinLen = 10
	answerMaxLen = 500
)

// intakeError is a user facing intake failure.
type intakeError struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// intakeResponse is the envelope returned by the intake endpoints.
type intakeResponse struct {
	Error     *intakeError `json:"error,omitempty"`
	Questions []string     `json:"questions,omitempty"`
}

// intakeRequest is the body of an appeal submission. Authenticating the
// caller is the fronting host's responsibility; this endpoint validates the
// submission itself.
type intakeRequest struct {
	UserID    string                    `json:"user_id"`
	Questions []entities.AppealQuestion `json:"questions"`
}

// checkEligibility reports why a user may not appeal, or nil when they may.
func checkEligibility(ctx context.Context, a IApp, userID string) (*intakeError, error) {
	banned, err := a.IsBanned(userID)
	if err != nil {
		return nil, fmt.Errorf("error checking ban: %w", err)
	}
	if !banned {
		return &intakeError{Title: "Nope.", Description: "You're not banned."}, nil
	}

	appeal, err := a.AppealDal(ctx).GetAppealByUser(userID)
	if errors.Is(err, dataaccess.ErrAppealNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking previous appeals: %w", err)
	}

	if appeal.Status.Resolved() {
		desc := fmt.Sprintf("Your last appeal was %s.", appeal.Status)
		if appeal.Status == entities.AppealStatusAccepted {
			desc += "\nYou have since been banned again, and are ineligible to re-appeal."
		}
		return &intakeError{Title: "Cannot re-appeal.", Description: desc}, nil
	}
	return &intakeError{Title: "Wait.", Description: "Your appeal is currently being processed."}, nil
}

// intakeStatusController reports whether the user may appeal and, if so, the
// questions to put on the form.
func intakeStatusController(a IApp) Controller {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			writeIntake(a, w, http.StatusBadRequest, &intakeResponse{
				Error: &intakeError{Title: "Error", Description: "user_id not provided"},
			})
			return
		}

		reason, err := checkEligibility(r.Context(), a, userID)
		if err != nil {
			a.Log().Error("Error checking appeal eligibility", slog.String(logging.KeyError, err.Error()))
			writeIntake(a, w, http.StatusInternalServerError, &intakeResponse{
				Error: &intakeError{Title: "Error", Description: "Could not check eligibility"},
			})
			return
		}
		if reason != nil {
			writeIntake(a, w, http.StatusOK, &intakeResponse{Error: reason})
			return
		}

		cfg, err := a.ConfigDal(r.Context()).GetConfig()
		if err != nil {
			a.Log().Error("Error getting appeal config", slog.String(logging.KeyError, err.Error()))
			writeIntake(a, w, http.StatusInternalServerError, &intakeResponse{
				Error: &intakeError{Title: "Error", Description: "Could not load questions"},
			})
			return
		}

		writeIntake(a, w, http.StatusOK, &intakeResponse{Questions: cfg.EffectiveQuestions()})
	}
}

// intakeAppealController accepts a new appeal submission and queues it for
// the poller.
func intakeAppealController(a IApp) Controller {
	return func(w http.ResponseWriter, r *http.Request) {
		body := new(intakeRequest)
		if err := json.NewDecoder(r.Body).Decode(body); err != nil {
			writeIntake(a, w, http.StatusBadRequest, &intakeResponse{
				Error: &intakeError{Title: "Error", Description: "invalid request body"},
			})
			return
		}

		if body.UserID == "" {
			writeIntake(a, w, http.StatusBadRequest, &intakeResponse{
				Error: &intakeError{Title: "Error", Description: "user_id not provided"},
			})
			return
		}

		if len(body.Questions) == 0 {
			writeIntake(a, w, http.StatusBadRequest, &intakeResponse{
				Error: &intakeError{Title: "Error", Description: "questions not provided"},
			})
			return
		}

		for _, q := range body.Questions {
			if q.Question == "" || len(q.Answer) < answerMinLen || len(q.Answer) > answerMaxLen {
				writeIntake(a, w, http.StatusBadRequest, &intakeResponse{
					Error: &intakeError{Title: "Error", Description: "invalid question/answer"},
				})
				return
			}
		}

		reason, err := checkEligibility(r.Context(), a, body.UserID)
		if err != nil {
			a.Log().Error("Error checking appeal eligibility", slog.String(logging.KeyError, err.Error()))
			writeIntake(a, w, http.StatusInternalServerError, &intakeResponse{
				Error: &intakeError{Title: "Error", Description: "Could not check eligibility"},
			})
			return
		}
		if reason != nil {
			writeIntake(a, w, http.StatusOK, &intakeResponse{Error: reason})
			return
		}

		appeal := &entities.Appeal{
			UserID:    body.UserID,
			CreatedAt: time.Now().UnixMilli(),
			Questions: body.Questions,
			Status:    entities.AppealStatusPolling,
		}
		if err := a.AppealDal(r.Context()).SaveAppeal(appeal); err != nil {
			a.Log().Error("Error saving appeal", slog.String(logging.KeyError, err.Error()))
			writeIntake(a, w, http.StatusInternalServerError, &intakeResponse{
				Error: &intakeError{Title: "Error", Description: "Could not save appeal"},
			})
			return
		}

		writeIntake(a, w, http.StatusOK, &intakeResponse{
			Error: &intakeError{Title: "Success.", Description: "Your appeal has been submitted."},
		})
	}
}

func writeIntake(a IApp, w http.ResponseWriter, status int, resp *intakeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
	}
}
