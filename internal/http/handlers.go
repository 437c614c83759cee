package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sastavapp/sastav-server/internal/league"
	"github.com/sastavapp/sastav-server/internal/matches"
	"github.com/sastavapp/sastav-server/internal/ranking"
	"github.com/sastavapp/sastav-server/internal/sastav"
	"github.com/sastavapp/sastav-server/internal/settlement"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Matches.Clear()
		s.League.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

func (s *Server) ListSportsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.Catalog.List()); err != nil {
			log.Error("Failed to encode sports to JSON", "error", err)
		}
	}
}

// QuestionnaireHandler accepts a completed starting-rank questionnaire and
// returns the computed rank. The player profile is created as a side effect.
func (s *Server) QuestionnaireHandler() http.HandlerFunc {
	type request struct {
		UserID   string `json:"user_id"`
		Name     string `json:"name"`
		Surname  string `json:"surname"`
		Username string `json:"username"`
		Sport    string `json:"sport"`
		Answers  []int  `json:"answers"`
	}
	type response struct {
		UserID string `json:"user_id"`
		Sport  string `json:"sport"`
		Rank   int    `json:"rank"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.UserID == "" || req.Sport == "" {
			http.Error(w, "user_id and sport are required", http.StatusBadRequest)
			return
		}
		if len(req.Answers) != ranking.NumQuestions {
			http.Error(w, fmt.Sprintf("exactly %d answers are required", ranking.NumQuestions), http.StatusBadRequest)
			return
		}
		var answers [ranking.NumQuestions]int
		copy(answers[:], req.Answers)

		player := league.PlayerInfo{
			ID:       req.UserID,
			Name:     req.Name,
			Surname:  req.Surname,
			Username: req.Username,
		}
		rank, err := s.Engine.CompleteQuestionnaire(player, req.Sport, answers)
		if err != nil {
			switch {
			case errors.Is(err, settlement.ErrUnknownSport), errors.Is(err, ranking.ErrUnanswered):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				log.Error("Failed to complete questionnaire", "error", err, "userID", req.UserID)
				http.Error(w, "Failed to complete questionnaire", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response{UserID: req.UserID, Sport: req.Sport, Rank: rank}); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	type request struct {
		Sport     string `json:"sport"`
		OwnerID   string `json:"owner_id"`
		StartTime int64  `json:"start_time"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if _, ok := s.Catalog.Get(req.Sport); !ok {
			http.Error(w, fmt.Sprintf("unknown sport %q", req.Sport), http.StatusBadRequest)
			return
		}
		if req.OwnerID == "" {
			http.Error(w, "owner_id is required", http.StatusBadRequest)
			return
		}
		startTime := req.StartTime
		if startTime == 0 {
			startTime = time.Now().Unix()
		}

		match, err := s.Matches.CreateMatch(req.Sport, req.OwnerID, startTime)
		if err != nil {
			log.Error("Failed to create match", "error", err, "sport", req.Sport)
			http.Error(w, "Failed to create match", http.StatusInternalServerError)
			return
		}
		log.Info("Match created", "matchID", match.ID, "sport", match.Sport, "ownerID", match.OwnerID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(match); err != nil {
			log.Error("Failed to encode match to JSON", "error", err)
		}
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userID")
		sport := r.URL.Query().Get("sport")

		var (
			list []*sastav.Match
			err  error
		)
		if userID != "" {
			list, err = s.Matches.ListUserMatches(userID)
		} else {
			list, err = s.Matches.ListOpenMatches(sport)
		}
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(list); err != nil {
			log.Error("Failed to encode matches to JSON", "error", err)
		}
	}
}

func (s *Server) JoinMatchHandler() http.HandlerFunc {
	type request struct {
		MatchID  string            `json:"match_id"`
		UserID   string            `json:"user_id"`
		Team     sastav.TeamNumber `json:"team"`
		Name     string            `json:"name"`
		Surname  string            `json:"surname"`
		Username string            `json:"username"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Team != sastav.Team1 && req.Team != sastav.Team2 {
			http.Error(w, "team must be 1 or 2", http.StatusBadRequest)
			return
		}

		p := sastav.Participant{
			MatchID:  req.MatchID,
			UserID:   req.UserID,
			Team:     req.Team,
			Name:     req.Name,
			Surname:  req.Surname,
			Username: req.Username,
		}
		if err := s.Matches.JoinMatch(p); err != nil {
			switch {
			case errors.Is(err, matches.ErrMatchNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, matches.ErrMatchCompleted):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				log.Error("Failed to join match", "error", err, "matchID", req.MatchID, "userID", req.UserID)
				http.Error(w, "Failed to join match", http.StatusInternalServerError)
			}
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) LeaveMatchHandler() http.HandlerFunc {
	type request struct {
		MatchID string `json:"match_id"`
		UserID  string `json:"user_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := s.Matches.LeaveMatch(req.MatchID, req.UserID); err != nil {
			switch {
			case errors.Is(err, matches.ErrMatchNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, matches.ErrMatchCompleted):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				log.Error("Failed to leave match", "error", err, "matchID", req.MatchID, "userID", req.UserID)
				http.Error(w, "Failed to leave match", http.StatusInternalServerError)
			}
			return
		}
		w.Write([]byte("OK"))
	}
}

// SubmitScoreHandler records a score submission. The score shape is validated
// against the sport's category up front; a later submission for the same
// match overwrites an earlier one.
func (s *Server) SubmitScoreHandler() http.HandlerFunc {
	type request struct {
		MatchID string       `json:"match_id"`
		UserID  string       `json:"user_id"`
		Score   sastav.Score `json:"score"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		match, err := s.Matches.GetMatch(req.MatchID)
		if err != nil {
			if errors.Is(err, matches.ErrMatchNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
			} else {
				log.Error("Failed to get match", "error", err, "matchID", req.MatchID)
				http.Error(w, "Failed to get match", http.StatusInternalServerError)
			}
			return
		}
		if match.Status == sastav.StatusCompleted {
			http.Error(w, matches.ErrMatchCompleted.Error(), http.StatusConflict)
			return
		}

		category, ok := s.Catalog.Category(match.Sport)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown sport %q", match.Sport), http.StatusBadRequest)
			return
		}
		if err := ranking.ValidateScoreShape(req.Score, category); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sub := sastav.ScoreSubmission{
			MatchID:     req.MatchID,
			UserID:      req.UserID,
			Score:       req.Score,
			SubmittedAt: time.Now().Unix(),
		}
		if err := s.Matches.SubmitScore(sub); err != nil {
			log.Error("Failed to submit score", "error", err, "matchID", req.MatchID)
			http.Error(w, "Failed to submit score", http.StatusInternalServerError)
			return
		}
		log.Info("Score submitted", "matchID", req.MatchID, "userID", req.UserID)
		w.Write([]byte("OK"))
	}
}

// SettleMatchHandler runs the settlement pipeline for one match.
func (s *Server) SettleMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "matchID is required", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)

		result, err := s.Engine.SettleMatch(matchID, isDryRun)
		if err != nil {
			switch {
			case errors.Is(err, matches.ErrMatchNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, settlement.ErrAlreadyCompleted):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, settlement.ErrNoScoreSubmitted),
				errors.Is(err, settlement.ErrNoParticipants),
				errors.Is(err, ranking.ErrTiedResult),
				errors.Is(err, ranking.ErrNoScore):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				log.Error("Failed to settle match", "error", err, "matchID", matchID)
				http.Error(w, "Failed to settle match", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.Error("Failed to encode settlement result to JSON", "error", err)
		}
	}
}

func (s *Server) HistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userID")
		if userID == "" {
			http.Error(w, "userID is required", http.StatusBadRequest)
			return
		}
		sport := r.URL.Query().Get("sport")

		limit := 20
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err == nil && parsed > 0 {
				limit = parsed
			} else {
				log.Warn("Invalid 'limit' parameter provided. Defaulting to 20.", "limit_param", limitStr)
			}
		}

		history, err := s.League.GetHistory(userID, sport, limit)
		if err != nil {
			http.Error(w, "Failed to get match history", http.StatusInternalServerError)
			log.Error("Failed to get match history from store", "error", err, "userID", userID)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(history); err != nil {
			log.Error("Failed to encode history to JSON", "error", err)
		}
	}
}

// LeaderboardHandler returns a handler that serves the per-sport rank leaderboard.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sport := r.URL.Query().Get("sport")
		if _, ok := s.Catalog.Get(sport); !ok {
			http.Error(w, fmt.Sprintf("unknown sport %q", sport), http.StatusBadRequest)
			return
		}

		entries, err := s.League.Leaderboard(sport)
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard from store", "error", err, "sport", sport)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			log.Error("Failed to encode leaderboard to JSON", "error", err)
		}
	}
}

// unwrapPushMessage extracts the base64-encoded payload from a pubsub push
// delivery and returns the raw MessagePack bytes.
func unwrapPushMessage(body []byte) ([]byte, error) {
	var pubsubMsg struct {
		Subscription string `json:"subscription"`
		Message      struct {
			Data string `json:"data"` // base64-encoded message payload
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &pubsubMsg); err != nil {
		return nil, fmt.Errorf("invalid wrapper JSON: %w", err)
	}
	rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 data: %w", err)
	}
	return rawData, nil
}

// CleanupChatHandler consumes pubsub push messages asking for a match's chat
// thread to be removed. The payload is base64-wrapped MessagePack.
func (s *Server) CleanupChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received cleanup chat message", "body", string(bodyBytes))

		rawData, err := unwrapPushMessage(bodyBytes)
		if err != nil {
			log.Error("Failed to unwrap push message", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var payload struct {
			MatchID string `msgpack:"match_id"`
		}
		if err := s.pubsub.ProcessMessage(rawData, &payload); err != nil {
			log.Error("Failed to decode cleanup chat payload", "error", err)
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if err := s.Matches.DeleteChatThread(payload.MatchID); err != nil {
			log.Error("Failed to delete chat thread", "error", err, "matchID", payload.MatchID)
			http.Error(w, "Failed to delete chat thread", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// CleanupRosterHandler consumes pubsub push messages scheduled at settlement
// asking for a settled match's participant rows to be removed.
func (s *Server) CleanupRosterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received cleanup roster message", "body", string(bodyBytes))

		rawData, err := unwrapPushMessage(bodyBytes)
		if err != nil {
			log.Error("Failed to unwrap push message", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var payload struct {
			MatchID string `msgpack:"match_id"`
		}
		if err := s.pubsub.ProcessMessage(rawData, &payload); err != nil {
			log.Error("Failed to decode cleanup roster payload", "error", err)
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if err := s.Matches.DeleteParticipants(payload.MatchID); err != nil {
			log.Error("Failed to delete participants", "error", err, "matchID", payload.MatchID)
			http.Error(w, "Failed to delete participants", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
// The command text is the sport ID.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		sportID := r.FormValue("text")
		sport, ok := s.Catalog.Get(sportID)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown sport %q", sportID), http.StatusBadRequest)
			return
		}

		entries, err := s.League.Leaderboard(sport.ID)
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard from store", "error", err, "sport", sport.ID)
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(sport, entries)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// PlayerRankCommandHandler returns a handler for the /rank Slack command.
// The command text is "<sport> <player name>".
func (s *Server) PlayerRankCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		sportID := r.FormValue("sport")
		query := r.FormValue("text")
		if query == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}
		sport, ok := s.Catalog.Get(sportID)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown sport %q", sportID), http.StatusBadRequest)
			return
		}

		log.Info("Received player rank command", "player", query, "sport", sport.ID)

		entry, err := s.League.FindRankEntry(query, sport.ID)
		var msg any
		if err != nil {
			log.Warn("Could not find ranked player", "player", query, "error", err)
			msg, err = s.Notifier.FormatPlayerNotFoundResponse(query)
		} else {
			history, histErr := s.League.GetHistory(entry.UserID, sport.ID, 5)
			if histErr != nil {
				log.Warn("Could not load match history", "player", query, "error", histErr)
			}
			msg, err = s.Notifier.FormatPlayerRankResponse(*entry, history)
		}

		if err != nil {
			http.Error(w, "Failed to format player rank", http.StatusInternalServerError)
			log.Error("Failed to format player rank", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}
