package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type addFavoriteRequest struct {
	MovieID     *int64   `json:"movie_id"`
	MovieTitle  string   `json:"movie_title"`
	MoviePoster *string  `json:"movie_poster"`
	MovieRating *float64 `json:"movie_rating"`
	MovieYear   *string  `json:"movie_year"`
}

type removeFavoriteRequest struct {
	MovieID *int64 `json:"movie_id"`
}

// HandleAddFavorite pins a movie to the caller's list.
// POST /api/favorites/add
func (a *App) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}
	if req.MovieID == nil || req.MovieTitle == "" {
		writeMessage(w, http.StatusBadRequest, false, "Movie ID and title required")
		return
	}

	err := a.DB.AddFavorite(currentUserID(r), *req.MovieID, req.MovieTitle, req.MoviePoster, req.MovieRating, req.MovieYear)
	if err != nil {
		if errors.Is(err, ErrAlreadyFavorited) {
			writeMessage(w, http.StatusBadRequest, false, "Already in favorites")
			return
		}
		writeDBError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, true, "Added to favorites")
}

// HandleRemoveFavorite deletes a favorite; removing one that does not
// exist still succeeds.
// POST /api/favorites/remove
func (a *App) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	var req removeFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}
	if req.MovieID == nil {
		writeMessage(w, http.StatusBadRequest, false, "Movie ID required")
		return
	}

	if err := a.DB.RemoveFavorite(currentUserID(r), *req.MovieID); err != nil {
		writeDBError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, true, "Removed from favorites")
}

// HandleListFavorites returns the caller's favorites, newest first.
// GET /api/favorites
func (a *App) HandleListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := a.DB.ListFavorites(currentUserID(r))
	if err != nil {
		writeDBError(w, err)
		return
	}
	if favs == nil {
		favs = []*Favorite{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"favorites": favs,
	})
}

// HandleCheckFavorite reports whether a single movie is on the caller's
// list. The route constrains {movieID} to digits.
// GET /api/favorites/check/{movieID}
func (a *App) HandleCheckFavorite(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(mux.Vars(r)["movieID"], 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Movie ID required")
		return
	}

	favorited, err := a.DB.IsFavorited(currentUserID(r), movieID)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"is_favorited": favorited,
	})
}
