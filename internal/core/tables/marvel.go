package tables

import (
	"github.com/JonMunkholm/marvel-explorer/internal/core"
	"github.com/JonMunkholm/marvel-explorer/internal/schema"
)

func init() {
	registerCharacters()
	registerComics()
	registerEvents()
	registerSeries()
	registerStories()
}

var keyField = core.FieldSpec{Name: schema.KeyColumn, Type: core.FieldInteger}

func registerCharacters() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "Characters",
			Relation:  schema.TableCharacters,
			KeyColumn: schema.KeyColumn,
			Order:     1,
		},
		FieldSpecs: []core.FieldSpec{
			keyField,
			{Name: "name", Type: core.FieldText},
			{Name: "description", Type: core.FieldText},
			{Name: "thumbnail", Type: core.FieldText},
			{Name: "modified", Type: core.FieldTimestamp},
		},
	})
}

func registerComics() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "Comics",
			Relation:  schema.TableComics,
			KeyColumn: schema.KeyColumn,
			Order:     2,
		},
		FieldSpecs: []core.FieldSpec{
			keyField,
			{Name: "comic_name", Type: core.FieldText},
			{Name: "comic_resourceURI", Type: core.FieldText},
		},
	})
}

func registerEvents() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "Events",
			Relation:  schema.TableEvents,
			KeyColumn: schema.KeyColumn,
			Order:     3,
		},
		FieldSpecs: []core.FieldSpec{
			keyField,
			{Name: "event_name", Type: core.FieldText},
			{Name: "event_resourceURI", Type: core.FieldText},
		},
	})
}

func registerSeries() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "Series",
			Relation:  schema.TableSeries,
			KeyColumn: schema.KeyColumn,
			Order:     4,
		},
		FieldSpecs: []core.FieldSpec{
			keyField,
			{Name: "series_name", Type: core.FieldText},
			{Name: "series_resourceURI", Type: core.FieldText},
		},
	})
}

func registerStories() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "Stories",
			Relation:  schema.TableStories,
			KeyColumn: schema.KeyColumn,
			Order:     5,
		},
		FieldSpecs: []core.FieldSpec{
			keyField,
			{Name: "story_name", Type: core.FieldText},
			{Name: "story_type", Type: core.FieldText},
			{Name: "story_resourceURI", Type: core.FieldText},
		},
	})
}
