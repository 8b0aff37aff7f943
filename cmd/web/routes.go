package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/dgmoraes/sunday-league/internal/httputil"
	"github.com/dgmoraes/sunday-league/internal/middleware"
	"github.com/dgmoraes/sunday-league/internal/service"
	"github.com/dgmoraes/sunday-league/internal/store"
	"github.com/dgmoraes/sunday-league/internal/summary"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func newRouter(database *sqlx.DB, sessionManager *scs.SessionManager) http.Handler {
	players := store.NewPlayerStore(database)
	gatherings := store.NewGatheringStore(database)
	matches := store.NewMatchStore(database)
	queue := store.NewQueueStore(database)
	votes := store.NewVoteStore(database)

	playerService := service.NewPlayerService(database, players)
	gatheringService := service.NewGatheringService(database, gatherings, matches, queue, players)
	matchService := service.NewMatchService(database, matches, gatherings, queue, players)
	draftService := service.NewDraftService(database, matches, queue, players)
	votingService := service.NewVotingService(database, gatherings, votes, gatheringService)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(sessionManager.LoadAndSave)

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}

	urlID := func(r *http.Request, name string) (uuid.UUID, error) {
		return uuid.Parse(chi.URLParam(r, name))
	}

	// Players
	r.Post("/players", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Name         string `json:"name"`
			Nickname     string `json:"nickname"`
			Bio          string `json:"bio"`
			PhotoURL     string `json:"photo_url"`
			IsGoalkeeper bool   `json:"is_goalkeeper"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
			httputil.BadRequest(w, "name is required", err)
			return
		}
		player, err := playerService.CreatePlayer(r.Context(), service.PlayerInput{
			Name: in.Name, Nickname: in.Nickname, Bio: in.Bio, PhotoURL: in.PhotoURL, IsGoalkeeper: in.IsGoalkeeper,
		})
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, player)
	})

	r.Get("/players", func(w http.ResponseWriter, r *http.Request) {
		includeArchived := r.URL.Query().Get("archived") == "true"
		list, err := playerService.ListPlayers(r.Context(), includeArchived)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		if role := r.URL.Query().Get("role"); role == "goalkeeper" || role == "outfield" {
			filtered := list[:0]
			for _, p := range list {
				if p.IsGoalkeeper == (role == "goalkeeper") {
					filtered = append(filtered, p)
				}
			}
			list = filtered
		}
		writeJSON(w, http.StatusOK, list)
	})

	r.Get("/players/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			httputil.BadRequest(w, "invalid player id", err)
			return
		}
		player, err := playerService.GetPlayer(r.Context(), id)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, player)
	})

	r.Put("/players/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			httputil.BadRequest(w, "invalid player id", err)
			return
		}
		var in struct {
			Name         string `json:"name"`
			Nickname     string `json:"nickname"`
			Bio          string `json:"bio"`
			PhotoURL     string `json:"photo_url"`
			IsGoalkeeper bool   `json:"is_goalkeeper"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
			httputil.BadRequest(w, "name is required", err)
			return
		}
		player, err := playerService.UpdatePlayer(r.Context(), id, service.PlayerInput{
			Name: in.Name, Nickname: in.Nickname, Bio: in.Bio, PhotoURL: in.PhotoURL, IsGoalkeeper: in.IsGoalkeeper,
		})
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, player)
	})

	r.Post("/players/{id}/archive", func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			httputil.BadRequest(w, "invalid player id", err)
			return
		}
		if err := playerService.ArchivePlayer(r.Context(), id); err != nil {
			httputil.DomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// Gatherings
	r.Post("/gatherings", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Date string `json:"date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Date == "" {
			httputil.BadRequest(w, "date is required", err)
			return
		}
		gathering, err := gatheringService.CreateGathering(r.Context(), in.Date)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		// The token is only ever disclosed here, to the creating admin.
		writeJSON(w, http.StatusCreated, struct {
			futsal.Gathering
			ModerationToken string `json:"moderation_token"`
		}{*gathering, gathering.ModerationToken})
	})

	r.Get("/gatherings", func(w http.ResponseWriter, r *http.Request) {
		list, err := gatheringService.ListGatherings(r.Context())
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	})

	r.Get("/gatherings/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			httputil.BadRequest(w, "invalid gathering id", err)
			return
		}
		gathering, err := gatheringService.GetGathering(r.Context(), id)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, gathering)
	})

	r.Get("/gatherings/{id}/queue", func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			httputil.BadRequest(w, "invalid gathering id", err)
			return
		}
		entries, err := gatheringService.GetQueue(r.Context(), id)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	})

	r.Post("/gatherings/{id}/moderate", func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			httputil.BadRequest(w, "invalid gathering id", err)
			return
		}
		var in struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			httputil.BadRequest(w, "token is required", err)
			return
		}
		gathering, err := gatheringService.GetGathering(r.Context(), id)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		if err := middleware.OpenModeratorSession(r.Context(), sessionManager, gathering, in.Token); err != nil {
			httputil.DomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/gatherings/{id}/results", func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			httputil.BadRequest(w, "invalid gathering id", err)
			return
		}
		results, err := gatheringService.ComputeDayResults(r.Context(), id)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	})

	r.Get("/gatherings/{id}/summary", func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			httputil.BadRequest(w, "invalid gathering id", err)
			return
		}
		results, err := gatheringService.ComputeDayResults(r.Context(), id)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		list, err := playerService.ListPlayers(r.Context(), true)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		byID := make(map[uuid.UUID]futsal.Player, len(list))
		for _, p := range list {
			byID[p.ID] = p
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(summary.BuildDaySummary(results, byID)))
	})

	r.Get("/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			httputil.BadRequest(w, "invalid match id", err)
			return
		}
		match, err := matches.GetMatch(r.Context(), id)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, match)
	})

	r.Get("/matches/{id}/roster", func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			httputil.BadRequest(w, "invalid match id", err)
			return
		}
		entries, err := draftService.GetRoster(r.Context(), id)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	})

	r.Get("/matches/current", func(w http.ResponseWriter, r *http.Request) {
		match, err := matchService.GetCurrentMatch(r.Context())
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		if match == nil {
			httputil.NotFound(w, "no current match", nil)
			return
		}
		writeJSON(w, http.StatusOK, match)
	})

	// Moderator-only gathering mutations
	gatheringFromURL := func(r *http.Request) (uuid.UUID, error) {
		return uuid.Parse(chi.URLParam(r, "id"))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireModerator(sessionManager, gatherings, gatheringFromURL))

		r.Post("/gatherings/{id}/queue", func(w http.ResponseWriter, r *http.Request) {
			gatheringID, _ := middleware.GetGatheringIDFromContext(r.Context())
			var in struct {
				PlayerID string `json:"player_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httputil.BadRequest(w, "player_id is required", err)
				return
			}
			playerID, err := uuid.Parse(in.PlayerID)
			if err != nil {
				httputil.BadRequest(w, "invalid player id", err)
				return
			}
			entry, err := gatheringService.AddToQueue(r.Context(), gatheringID, playerID)
			if err != nil {
				httputil.DomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, entry)
		})

		r.Delete("/gatherings/{id}/queue/{entryID}", func(w http.ResponseWriter, r *http.Request) {
			entryID, err := urlID(r, "entryID")
			if err != nil {
				httputil.BadRequest(w, "invalid queue entry id", err)
				return
			}
			if err := gatheringService.RemoveFromQueue(r.Context(), entryID); err != nil {
				httputil.DomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/gatherings/{id}/matches", func(w http.ResponseWriter, r *http.Request) {
			gatheringID, _ := middleware.GetGatheringIDFromContext(r.Context())
			match, err := matchService.CreateMatch(r.Context(), gatheringID)
			if err != nil {
				httputil.DomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, match)
		})

		r.Post("/gatherings/{id}/draft", func(w http.ResponseWriter, r *http.Request) {
			gatheringID, _ := middleware.GetGatheringIDFromContext(r.Context())
			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			proposal, err := draftService.DraftTeams(r.Context(), gatheringID, rng)
			if err != nil {
				httputil.DomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, proposal)
		})

		r.Post("/gatherings/{id}/voting/release", func(w http.ResponseWriter, r *http.Request) {
			gatheringID, _ := middleware.GetGatheringIDFromContext(r.Context())
			if err := votingService.ReleaseVoting(r.Context(), gatheringID); err != nil {
				httputil.DomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/gatherings/{id}/votes", func(w http.ResponseWriter, r *http.Request) {
			gatheringID, _ := middleware.GetGatheringIDFromContext(r.Context())
			var in struct {
				VoterID string `json:"voter_id"`
				VotedID string `json:"voted_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httputil.BadRequest(w, "voter_id and voted_id are required", err)
				return
			}
			voterID, err := uuid.Parse(in.VoterID)
			if err != nil {
				httputil.BadRequest(w, "invalid voter id", err)
				return
			}
			votedID, err := uuid.Parse(in.VotedID)
			if err != nil {
				httputil.BadRequest(w, "invalid voted id", err)
				return
			}
			vote, err := votingService.RecordVote(r.Context(), gatheringID, voterID, votedID)
			if err != nil {
				httputil.DomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, vote)
		})

		r.Post("/gatherings/{id}/mvp", func(w http.ResponseWriter, r *http.Request) {
			gatheringID, _ := middleware.GetGatheringIDFromContext(r.Context())
			winner, err := votingService.ComputeMVP(r.Context(), gatheringID)
			if err != nil {
				httputil.DomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, struct {
				MVPPlayerID *uuid.UUID `json:"mvp_player_id"`
			}{winner})
		})
	})

	// Moderator-only match mutations; the gathering is resolved through the match.
	gatheringFromMatch := func(r *http.Request) (uuid.UUID, error) {
		matchID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			return uuid.Nil, err
		}
		match, err := matches.GetMatch(r.Context(), matchID)
		if err != nil {
			return uuid.Nil, err
		}
		return match.GatheringID, nil
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireModerator(sessionManager, gatherings, gatheringFromMatch))

		r.Post("/matches/{id}/start", func(w http.ResponseWriter, r *http.Request) {
			matchID, _ := urlID(r, "id")
			match, err := matchService.StartMatch(r.Context(), matchID)
			if err != nil {
				httputil.DomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, match)
		})

		r.Post("/matches/{id}/goals", func(w http.ResponseWriter, r *http.Request) {
			matchID, _ := urlID(r, "id")
			var in struct {
				Team     string  `json:"team"`
				ScorerID *string `json:"scorer_id"`
				AssistID *string `json:"assist_id"`
				OwnGoal  bool    `json:"own_goal"`
				Minute   int     `json:"minute"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httputil.BadRequest(w, "invalid goal payload", err)
				return
			}
			input := service.GoalInput{
				MatchID: matchID,
				Team:    futsal.Team(in.Team),
				OwnGoal: in.OwnGoal,
				Minute:  in.Minute,
			}
			if in.ScorerID != nil {
				id, err := uuid.Parse(*in.ScorerID)
				if err != nil {
					httputil.BadRequest(w, "invalid scorer id", err)
					return
				}
				input.ScorerID = &id
			}
			if in.AssistID != nil {
				id, err := uuid.Parse(*in.AssistID)
				if err != nil {
					httputil.BadRequest(w, "invalid assist id", err)
					return
				}
				input.AssistID = &id
			}
			match, err := matchService.RecordGoal(r.Context(), input)
			if err != nil {
				httputil.DomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, match)
		})

		r.Post("/matches/{id}/finish", func(w http.ResponseWriter, r *http.Request) {
			matchID, _ := urlID(r, "id")
			var in struct {
				ElapsedSeconds int     `json:"elapsed_seconds"`
				DrawLoser      *string `json:"draw_loser"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httputil.BadRequest(w, "invalid finish payload", err)
				return
			}
			var drawLoser *futsal.Team
			if in.DrawLoser != nil {
				team := futsal.Team(*in.DrawLoser)
				if !team.Valid() {
					httputil.BadRequest(w, "invalid draw_loser team", nil)
					return
				}
				drawLoser = &team
			}
			match, err := matchService.FinishMatch(r.Context(), matchID, in.ElapsedSeconds, drawLoser)
			if err != nil {
				httputil.DomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, match)
		})

		r.Post("/matches/{id}/roster", func(w http.ResponseWriter, r *http.Request) {
			matchID, _ := urlID(r, "id")
			var in []struct {
				PlayerID     string `json:"player_id"`
				Team         string `json:"team"`
				IsGoalkeeper bool   `json:"is_goalkeeper"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httputil.BadRequest(w, "invalid roster payload", err)
				return
			}
			assignment := make([]service.RosterAssignment, 0, len(in))
			for _, a := range in {
				assignment = append(assignment, service.RosterAssignment{
					PlayerID:     a.PlayerID,
					Team:         futsal.Team(a.Team),
					IsGoalkeeper: a.IsGoalkeeper,
				})
			}
			entries, err := draftService.CommitRoster(r.Context(), matchID, assignment)
			if err != nil {
				httputil.DomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, entries)
		})
	})

	return r
}
