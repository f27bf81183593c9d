package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/AdamBeresnev/op-bracket/internal/httputil"
	"github.com/AdamBeresnev/op-bracket/internal/logger"
	"github.com/AdamBeresnev/op-bracket/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type application struct {
	log         *logger.Logger
	tournaments *service.TournamentService
	matches     *service.MatchService
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(requestLogger(app.log))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
		var input service.CreateTournamentInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			httputil.BadRequest(w, app.log, "Invalid request body", err)
			return
		}

		tournament, err := app.tournaments.CreateTournament(r.Context(), input)
		if err != nil {
			httputil.WriteError(w, app.log, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, tournament)
	})

	r.Post("/tournaments/{id}/bracket", func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, app.log, "Invalid tournament ID")
		if !ok {
			return
		}

		result, err := app.tournaments.BuildBracket(r.Context(), id)
		if err != nil {
			httputil.WriteError(w, app.log, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, result)
	})

	r.Get("/tournaments/{id}/bracket", func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, app.log, "Invalid tournament ID")
		if !ok {
			return
		}

		view, err := app.tournaments.GetBracket(r.Context(), id)
		if err != nil {
			httputil.WriteError(w, app.log, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, view)
	})

	r.Get("/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, app.log, "Invalid match ID")
		if !ok {
			return
		}

		data, err := app.matches.GetMatch(r.Context(), id)
		if err != nil {
			httputil.WriteError(w, app.log, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, data)
	})

	r.Post("/matches/{id}/result", func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, app.log, "Invalid match ID")
		if !ok {
			return
		}

		var input service.ReportInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			httputil.BadRequest(w, app.log, "Invalid request body", err)
			return
		}
		if input.WinnerID == uuid.Nil {
			httputil.BadRequest(w, app.log, "winner_id is required", nil)
			return
		}
		input.MatchID = id

		outcome, err := app.matches.ReportResult(r.Context(), input)
		if err != nil {
			httputil.WriteError(w, app.log, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, outcome)
	})

	return r
}

func urlID(w http.ResponseWriter, r *http.Request, log *logger.Logger, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, log, msg, err)
		return uuid.Nil, false
	}
	return id, true
}

// requestLogger logs every request once it has been served.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()),
			}
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				log.Error("Request failed", fields...)
			case ww.Status() >= http.StatusBadRequest:
				log.Warn("Request rejected", fields...)
			default:
				log.Info("Request served", fields...)
			}
		})
	}
}
