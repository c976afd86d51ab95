// Package core loads CSV snapshots into the explorer's relations.
//
// It has no HTTP or CLI dependencies; the serve and ingest commands both
// drive it through [Engine].
//
// # Table Registry
//
// Tables are registered at init time using [Register]. Each
// [TableDefinition] names the snapshot file stem, the target relation, the
// key column used for existence checks, and the known column types:
//
//	core.Register(core.TableDefinition{
//	    Info: core.TableInfo{Key: "Comics", Relation: "comics", KeyColumn: "character_id", Order: 2},
//	    FieldSpecs: []core.FieldSpec{
//	        {Name: "character_id", Type: core.FieldInteger},
//	        {Name: "comic_name", Type: core.FieldText},
//	    },
//	})
//
// [All] returns definitions in ingestion order.
//
// # Ingestion
//
// [Engine.Run] processes tables strictly one after another. For each table
// it fetches <prefix>/<Key>.csv from a [SnapshotSource], parses it, and
// inside one transaction checks every row's key against the relation. New
// rows are inserted in batches and the transaction is committed once.
// Rows whose key already exists are skipped, never updated, so re-running
// on unchanged snapshots inserts nothing.
//
// Any failure rolls back that table only and is recorded in its
// [TableResult] with the [Stage] it happened in and a code from [MapError].
// The next table still runs.
package core
