// Package models contains the data structures used throughout the application.
package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MediaKind identifies the catalog collection a record comes from.
type MediaKind string

const (
	// KindMovie is a movie record.
	KindMovie MediaKind = "movie"

	// KindSeries is a series record.
	KindSeries MediaKind = "series"

	// KindEpisode is an episode record.
	KindEpisode MediaKind = "episode"
)

// DeliveryLink is one playable location of a media item.
// URL holds the encrypted form once the link has been persisted.
type DeliveryLink struct {
	// Quality is a free-form label such as "720p".
	Quality string `json:"quality" bson:"quality" validate:"required"`

	// Language is a free-form label such as "Hindi".
	Language string `json:"language" bson:"language" validate:"required"`

	// URL is the link target.
	URL string `json:"url" bson:"url" validate:"required"`
}

// MediaRecord is the view of a catalog item the delivery layer works on.
// Links is replaced by the resolver; every other field passes through untouched.
type MediaRecord struct {
	ID    bson.ObjectID
	Kind  MediaKind
	Title string

	// Provider is the stored provider-affinity hint, empty when none was recorded.
	Provider string

	Links []DeliveryLink
}

// Movie represents a movie in the catalog.
type Movie struct {
	// ID is the unique identifier for the movie.
	ID bson.ObjectID `json:"_id" bson:"_id,omitempty"`

	Title       string  `json:"title" bson:"title"`
	Overview    string  `json:"overview" bson:"overview"`
	PosterPath  string  `json:"posterPath" bson:"posterPath"`
	ReleaseDate string  `json:"releaseDate" bson:"releaseDate"`
	VoteAverage float64 `json:"voteAverage" bson:"voteAverage"`

	// VideoLinks are the delivery links, URLs encrypted.
	VideoLinks []DeliveryLink `json:"videoLinks" bson:"videoLinks"`

	Category string `json:"category" bson:"category"`
	Region   string `json:"region" bson:"region"`

	// Type is always "movie" unless the uploader set something else.
	Type string `json:"type" bson:"type"`

	// Views is incremented each time a client reports a playback.
	Views int64 `json:"views" bson:"views"`

	// Provider is the optional provider-affinity hint.
	Provider string `json:"provider,omitempty" bson:"provider,omitempty"`

	ObjectTimes `bson:",inline"`
}

// Record returns the delivery view of the movie.
func (m *Movie) Record() *MediaRecord {
	return &MediaRecord{
		ID:       m.ID,
		Kind:     KindMovie,
		Title:    m.Title,
		Provider: m.Provider,
		Links:    m.VideoLinks,
	}
}

// Apply copies the resolved links and provider back onto the movie.
func (m *Movie) Apply(r *MediaRecord) {
	m.VideoLinks = r.Links
	m.Provider = r.Provider
}

// MovieTitle is the id/title projection used for dropdowns.
type MovieTitle struct {
	ID    bson.ObjectID `json:"_id" bson:"_id"`
	Title string        `json:"title" bson:"title"`
}

// Series represents a series in the catalog.
type Series struct {
	ID bson.ObjectID `json:"_id" bson:"_id,omitempty"`

	Title       string  `json:"title" bson:"title"`
	Overview    string  `json:"overview" bson:"overview"`
	PosterPath  string  `json:"posterPath" bson:"posterPath"`
	ReleaseDate string  `json:"releaseDate" bson:"releaseDate"`
	VoteAverage float64 `json:"voteAverage" bson:"voteAverage"`

	// VideoSources are the delivery links, URLs encrypted.
	VideoSources []DeliveryLink `json:"videoSources" bson:"videoSources"`

	Category string `json:"category" bson:"category"`
	Region   string `json:"region" bson:"region"`
	Type     string `json:"type" bson:"type"`
	Provider string `json:"provider,omitempty" bson:"provider,omitempty"`

	ObjectTimes `bson:",inline"`
}

// Record returns the delivery view of the series.
func (s *Series) Record() *MediaRecord {
	return &MediaRecord{
		ID:       s.ID,
		Kind:     KindSeries,
		Title:    s.Title,
		Provider: s.Provider,
		Links:    s.VideoSources,
	}
}

// Apply copies the resolved links and provider back onto the series.
func (s *Series) Apply(r *MediaRecord) {
	s.VideoSources = r.Links
	s.Provider = r.Provider
}

// Episode is a single episode of a series.
type Episode struct {
	ID bson.ObjectID `json:"_id" bson:"_id,omitempty"`

	// SeriesID references the parent series.
	SeriesID bson.ObjectID `json:"seriesId" bson:"seriesId"`

	EpisodeNumber int    `json:"episodeNumber" bson:"episodeNumber"`
	Title         string `json:"title" bson:"title"`
	Overview      string `json:"overview,omitempty" bson:"overview,omitempty"`

	VideoSources []DeliveryLink `json:"videoSources" bson:"videoSources"`

	ReleaseDate string `json:"releaseDate,omitempty" bson:"releaseDate,omitempty"`
	Provider    string `json:"provider,omitempty" bson:"provider,omitempty"`
}

// Record returns the delivery view of the episode.
func (e *Episode) Record() *MediaRecord {
	return &MediaRecord{
		ID:       e.ID,
		Kind:     KindEpisode,
		Title:    e.Title,
		Provider: e.Provider,
		Links:    e.VideoSources,
	}
}

// Apply copies the resolved links and provider back onto the episode.
func (e *Episode) Apply(r *MediaRecord) {
	e.VideoSources = r.Links
	e.Provider = r.Provider
}
