package main

import "time"

// User represents a row in the users table. The password field holds the
// bcrypt hash, never the plaintext.
type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	IsAdmin   bool
	CreatedAt time.Time
}

// Favorite is a movie snapshot pinned to a user's list. Metadata is copied
// at favorite-time and never synced back to the catalog.
type Favorite struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	MovieID     int64     `json:"movie_id"`
	MovieTitle  string    `json:"movie_title"`
	MoviePoster *string   `json:"movie_poster"`
	MovieRating *float64  `json:"movie_rating"`
	MovieYear   *string   `json:"movie_year"`
	CreatedAt   time.Time `json:"created_at"`
}
