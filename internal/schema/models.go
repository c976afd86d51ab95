// Package schema defines the five relations loaded from the snapshots.
//
// Every relation is keyed by character_id, so a character holds at most one
// row per relation. Names are indexed but not unique.
package schema

import "time"

// Relation names.
const (
	TableCharacters = "characters"
	TableComics     = "comics"
	TableEvents     = "events"
	TableSeries     = "series"
	TableStories    = "stories"
)

// KeyColumn is the primary key of every relation.
const KeyColumn = "character_id"

// Character is a row of the characters relation.
type Character struct {
	CharacterID int64      `gorm:"column:character_id;primaryKey;autoIncrement:false"`
	Name        *string    `gorm:"column:name;type:text;index"`
	Description *string    `gorm:"column:description;type:text"`
	Thumbnail   *string    `gorm:"column:thumbnail;type:text"`
	Modified    *time.Time `gorm:"column:modified;type:timestamp"`
}

func (Character) TableName() string { return TableCharacters }

// Comic is a row of the comics relation.
type Comic struct {
	CharacterID      int64   `gorm:"column:character_id;primaryKey;autoIncrement:false"`
	ComicName        *string `gorm:"column:comic_name;type:text;index"`
	ComicResourceURI *string `gorm:"column:comic_resourceURI;type:text"`
}

func (Comic) TableName() string { return TableComics }

// Event is a row of the events relation.
type Event struct {
	CharacterID      int64   `gorm:"column:character_id;primaryKey;autoIncrement:false"`
	EventName        *string `gorm:"column:event_name;type:text;index"`
	EventResourceURI *string `gorm:"column:event_resourceURI;type:text"`
}

func (Event) TableName() string { return TableEvents }

// Series is a row of the series relation.
type Series struct {
	CharacterID       int64   `gorm:"column:character_id;primaryKey;autoIncrement:false"`
	SeriesName        *string `gorm:"column:series_name;type:text;index"`
	SeriesResourceURI *string `gorm:"column:series_resourceURI;type:text"`
}

func (Series) TableName() string { return TableSeries }

// Story is a row of the stories relation.
type Story struct {
	CharacterID      int64   `gorm:"column:character_id;primaryKey;autoIncrement:false"`
	StoryName        *string `gorm:"column:story_name;type:text;index"`
	StoryType        *string `gorm:"column:story_type;type:text"`
	StoryResourceURI *string `gorm:"column:story_resourceURI;type:text"`
}

func (Story) TableName() string { return TableStories }

// Models returns one zero value per relation, in ingestion order.
func Models() []any {
	return []any{&Character{}, &Comic{}, &Event{}, &Series{}, &Story{}}
}
