package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/yourusername/rugby-predictor/internal/backtest"
	"github.com/yourusername/rugby-predictor/internal/docstore"
	"github.com/yourusername/rugby-predictor/internal/models"
	"github.com/yourusername/rugby-predictor/internal/predictor"
)

const maxRequestBytes = 1 << 20

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictor.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, &models.ValidationError{Field: "body", Reason: "must be a JSON prediction request: " + err.Error()})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, validationError(err))
		return
	}

	prediction, err := s.deps.Predictor.Predict(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	leagueID, err := leagueIDVar(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	query := r.URL.Query()
	req := backtest.Request{LeagueID: leagueID, Year: query.Get("year")}
	if v := query.Get("min_train_games"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, &models.ValidationError{Field: "min_train_games", Reason: "must be an integer"})
			return
		}
		req.MinTrainGames = n
	}
	if v := query.Get("refresh"); v != "" {
		refresh, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, &models.ValidationError{Field: "refresh", Reason: "must be a boolean"})
			return
		}
		req.Refresh = refresh
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, validationError(err))
		return
	}

	result, err := s.deps.Backtester.Backtest(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLeagueMetrics(w http.ResponseWriter, r *http.Request) {
	leagueID, err := leagueIDVar(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var doc models.LeagueMetrics
	if err := s.deps.Documents.Get(r.Context(), docstore.LeagueMetricsKey(leagueID), &doc); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListLeagueMetrics(w http.ResponseWriter, r *http.Request) {
	keys, err := s.deps.Documents.Keys(r.Context(), "league_metrics:")
	if err != nil {
		s.writeError(w, err)
		return
	}

	leagues := make([]models.LeagueMetrics, 0, len(keys))
	for _, key := range keys {
		var doc models.LeagueMetrics
		if err := s.deps.Documents.Get(r.Context(), key, &doc); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Skipping unreadable league metric document")
			continue
		}
		leagues = append(leagues, doc)
	}
	writeJSON(w, http.StatusOK, map[string]any{"leagues": leagues})
}

func leagueIDVar(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["league_id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, &models.ValidationError{Field: "league_id", Reason: "must be a positive integer"}
	}
	return id, nil
}
