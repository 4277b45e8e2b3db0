package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Client platforms.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// Analytics event names counted by the summary.
const (
	EventAppInstall  = "app_install"
	EventMovieViewed = "movie_viewed"
	EventMoviePlay   = "movie_play"
)

// AppVersion is a released client build.
type AppVersion struct {
	ID        bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	Version   string        `json:"version" bson:"version"`
	Changelog string        `json:"changelog" bson:"changelog"`
	Mandatory bool          `json:"mandatory" bson:"mandatory"`
	Platform  string        `json:"platform" bson:"platform"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
}

// CrashReport is a client crash as reported by the app.
type CrashReport struct {
	ID         bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	Message    string        `json:"message" bson:"message"`
	StackTrace string        `json:"stackTrace" bson:"stackTrace"`
	Platform   string        `json:"platform" bson:"platform"`
	AppVersion string        `json:"appVersion" bson:"appVersion"`
	CreatedAt  time.Time     `json:"createdAt" bson:"createdAt"`
}

// Event is one tracked client or proxy event. Data is free-form.
type Event struct {
	ID        bson.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Event     string         `json:"event" bson:"event"`
	Data      map[string]any `json:"data" bson:"data"`
	Timestamp time.Time      `json:"timestamp" bson:"timestamp"`
}

// AnalyticsSummary aggregates the tracked events.
type AnalyticsSummary struct {
	TotalInstalls int64 `json:"totalInstalls"`
	TotalViews    int64 `json:"totalViews"`
	TodayViews    int64 `json:"todayViews"`
	TotalPlays    int64 `json:"totalPlays"`
}

// AppStats holds the app-wide counters. There is a single document.
type AppStats struct {
	ID              bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	TotalInstalls   int64         `json:"totalInstalls" bson:"totalInstalls"`
	TotalVisits     int64         `json:"totalVisits" bson:"totalVisits"`
	TodayVisits     int64         `json:"todayVisits" bson:"todayVisits"`
	TotalMoviePlays int64         `json:"totalMoviePlays" bson:"totalMoviePlays"`
	LastUpdated     time.Time     `json:"lastUpdated" bson:"lastUpdated"`
}

// StatCounter names an AppStats counter that can be bumped.
type StatCounter string

const (
	StatVisit     StatCounter = "visit"
	StatInstall   StatCounter = "install"
	StatMoviePlay StatCounter = "play"
)

// Record bumps counter at now. A visit on a new day restarts TodayVisits.
func (s *AppStats) Record(counter StatCounter, now time.Time) {
	switch counter {
	case StatVisit:
		if s.LastUpdated.Before(StartOfDay(now)) {
			s.TodayVisits = 0
		}
		s.TotalVisits++
		s.TodayVisits++
	case StatInstall:
		s.TotalInstalls++
	case StatMoviePlay:
		s.TotalMoviePlays++
	}
	s.LastUpdated = now
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
