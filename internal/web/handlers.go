package web

import (
	"net/http"

	"github.com/JonMunkholm/marvel-explorer/internal/core"
)

// characterName returns the character_name query parameter as sent. Names
// are matched exactly, so surrounding spaces are kept; the query layer
// treats a blank value as missing.
func characterName(r *http.Request) string {
	return r.URL.Query().Get("character_name")
}

// handleHealth pings the database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable, msgUnavailable)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTables returns the row count of every registered table.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	infos := make([]core.TableInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}

	counts, err := s.queries.TableCounts(r.Context(), infos)
	if err != nil {
		respondQueryError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, counts)
}

func (s *Server) handleCharacterNames(w http.ResponseWriter, r *http.Request) {
	names, err := s.queries.CharacterNames(r.Context())
	if err != nil {
		respondQueryError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, names)
}

func (s *Server) handleComics(w http.ResponseWriter, r *http.Request) {
	rows, err := s.queries.ComicsForCharacter(r.Context(), characterName(r))
	if err != nil {
		respondQueryError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rows)
}

func (s *Server) handleSeriesAndEvents(w http.ResponseWriter, r *http.Request) {
	rows, err := s.queries.SeriesAndEventsForCharacter(r.Context(), characterName(r))
	if err != nil {
		respondQueryError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rows)
}

// handleComicCounts accepts an optional character_name filter.
func (s *Server) handleComicCounts(w http.ResponseWriter, r *http.Request) {
	rows, err := s.queries.ComicCounts(r.Context(), characterName(r))
	if err != nil {
		respondQueryError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rows)
}

// handleSummary accepts an optional character_name filter.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := s.queries.CharacterSummary(r.Context(), characterName(r))
	if err != nil {
		respondQueryError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rows)
}
