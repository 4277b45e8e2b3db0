package models

// LinkInput is a delivery link as submitted by an uploader, URL in plaintext.
type LinkInput struct {
	Quality  string `json:"quality" validate:"required"`
	Language string `json:"language" validate:"required"`
	URL      string `json:"url" validate:"required,http_url"`
}

// MovieCreateRequest represents the data needed to upload a movie.
type MovieCreateRequest struct {
	Title       string  `json:"title" validate:"required"`
	Overview    string  `json:"overview" validate:"required"`
	PosterPath  string  `json:"posterPath" validate:"required,url"`
	ReleaseDate string  `json:"releaseDate" validate:"required,iso8601"`
	VoteAverage float64 `json:"voteAverage" validate:"min=0,max=10"`
	Category    string  `json:"category" validate:"required"`

	// Region must be Hollywood or Bollywood on upload; All is only a query value.
	Region string `json:"region" validate:"required,oneof=Hollywood Bollywood"`

	Type     string `json:"type,omitempty"`
	Provider string `json:"provider,omitempty"`

	VideoLinks []LinkInput `json:"videoLinks" validate:"required,min=1,dive"`
}

// AddSourceRequest appends one delivery link to a movie.
type AddSourceRequest struct {
	VideoSource *LinkInput `json:"videoSource" validate:"required"`
}

// MovieListQuery holds the filters of the movie listing.
type MovieListQuery struct {
	Type     string
	Category string
	Region   string
	Page     int64
	Limit    int64
}

// MoviePage is one page of the movie listing.
type MoviePage struct {
	Page       int64    `json:"page"`
	Limit      int64    `json:"limit"`
	Total      int64    `json:"total"`
	TotalPages int64    `json:"totalPages"`
	Movies     []*Movie `json:"movies"`
}

// SeriesCreateRequest represents the data needed to upload a series.
type SeriesCreateRequest struct {
	Title        string      `json:"title" validate:"required"`
	Overview     string      `json:"overview" validate:"required"`
	PosterPath   string      `json:"posterPath" validate:"required"`
	ReleaseDate  string      `json:"releaseDate" validate:"required"`
	VoteAverage  float64     `json:"voteAverage"`
	Category     string      `json:"category" validate:"required"`
	Region       string      `json:"region" validate:"required,region"`
	Type         string      `json:"type,omitempty"`
	Provider     string      `json:"provider,omitempty"`
	VideoSources []LinkInput `json:"videoSources" validate:"dive"`
}

// SeriesUpdateRequest holds the fields of a series that may be changed.
// Nil fields are left untouched.
type SeriesUpdateRequest struct {
	Title        *string     `json:"title,omitempty" validate:"omitempty,min=1"`
	Overview     *string     `json:"overview,omitempty"`
	PosterPath   *string     `json:"posterPath,omitempty"`
	ReleaseDate  *string     `json:"releaseDate,omitempty"`
	VoteAverage  *float64    `json:"voteAverage,omitempty"`
	Category     *string     `json:"category,omitempty" validate:"omitempty,min=1"`
	Region       *string     `json:"region,omitempty" validate:"omitempty,region"`
	Provider     *string     `json:"provider,omitempty"`
	VideoSources []LinkInput `json:"videoSources,omitempty" validate:"omitempty,dive"`
}

// EpisodeCreateRequest represents the data needed to add an episode.
type EpisodeCreateRequest struct {
	SeriesID      string      `json:"seriesId" validate:"required,objectid"`
	EpisodeNumber int         `json:"episodeNumber" validate:"required,min=1"`
	Title         string      `json:"title" validate:"required"`
	Overview      string      `json:"overview,omitempty"`
	ReleaseDate   string      `json:"releaseDate,omitempty"`
	Provider      string      `json:"provider,omitempty"`
	VideoSources  []LinkInput `json:"videoSources" validate:"required,dive"`
}

// Query values with special meaning in catalog listings.
const (
	// FilterAll disables the category or region filter.
	FilterAll = "All"

	// CategoryTrending lists every category ordered by views.
	CategoryTrending = "Trending"

	// CategoryRecent lists every category newest first.
	CategoryRecent = "Recent"
)

// Listing bounds.
const (
	DefaultPage  int64 = 1
	DefaultLimit int64 = 1000
	MaxLimit     int64 = 1000
)

// AppVersionCreateRequest publishes a client build.
type AppVersionCreateRequest struct {
	Version   string `json:"version" validate:"required,max=32"`
	Changelog string `json:"changelog" validate:"required"`
	Mandatory bool   `json:"mandatory"`
	Platform  string `json:"platform" validate:"required,oneof=android ios"`
}

// CrashReportRequest is a crash sent by the app. Every field is optional.
type CrashReportRequest struct {
	Message    string `json:"message" validate:"max=4096"`
	StackTrace string `json:"stackTrace"`
	Platform   string `json:"platform" validate:"max=32"`
	AppVersion string `json:"appVersion" validate:"max=32"`
}

// EventRequest is one analytics or proxy event.
type EventRequest struct {
	Event string         `json:"event" validate:"max=100"`
	Data  map[string]any `json:"data"`
}
