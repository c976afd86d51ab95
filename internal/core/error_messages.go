package core

// error_messages.go classifies ingestion failures into short codes that
// appear in run reports, logs and the ingest command's output.
//
// # Snapshot Errors (SNAP001-SNAP099)
//
//	SNAP001 - Snapshot missing: the object for a table does not exist
//	SNAP002 - Access denied: bucket credentials were rejected
//	SNAP003 - Storage unavailable: the bucket endpoint could not be reached
//
// # CSV Errors (CSV001-CSV099)
//
//	CSV001 - Malformed CSV: unreadable header, duplicate columns, or a row wider than the header
//	CSV002 - Missing key column: the header has no character_id
//	CSV003 - Invalid value: a cell could not be converted to its column type
//	CSV004 - Empty snapshot: the object has no header row
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: a row with this character_id already exists
//	DB002 - Unknown column: the snapshot has a column the relation lacks
//	DB003 - Missing relation: the target table does not exist
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Run in progress: another ingestion run holds the slot
//	RUN002 - Cancelled: the run's context was cancelled
//
// # Default Error (ERR000)
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides an operator-facing description of a failure.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Short code for logs and reports
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Snapshot errors. Sources wrap their failures in the snapshot sentinels,
	// so these match before any transport detail below.
	{
		pattern: "snapshot not found",
		msg: UserMessage{
			Message: "Snapshot object does not exist",
			Action:  "Check the bucket prefix and that the export wrote every table",
			Code:    "SNAP001",
		},
	},
	{
		pattern: "snapshot access denied",
		msg: UserMessage{
			Message: "Snapshot storage rejected the credentials",
			Action:  "Check SNAPSHOT_ACCESS_KEY_ID and SNAPSHOT_SECRET_ACCESS_KEY",
			Code:    "SNAP002",
		},
	},
	{
		pattern: "snapshot storage unavailable",
		msg: UserMessage{
			Message: "Snapshot storage could not be reached",
			Action:  "Check SNAPSHOT_ENDPOINT and network access, then retry",
			Code:    "SNAP003",
		},
	},

	// CSV errors
	{
		pattern: "malformed csv",
		msg: UserMessage{
			Message: "Snapshot is not valid CSV",
			Action:  "Re-export the snapshot with a single header row",
			Code:    "CSV001",
		},
	},
	{
		pattern: "missing key column",
		msg: UserMessage{
			Message: "Snapshot has no character_id column",
			Action:  "Re-export the snapshot with the character_id column",
			Code:    "CSV002",
		},
	},
	{
		pattern: "invalid value",
		msg: UserMessage{
			Message: "A cell could not be converted to its column type",
			Action:  "Fix the reported row in the snapshot",
			Code:    "CSV003",
		},
	},
	{
		pattern: "empty snapshot",
		msg: UserMessage{
			Message: "Snapshot is empty",
			Action:  "Re-export the snapshot",
			Code:    "CSV004",
		},
	},

	// Database errors
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A row with this character_id already exists",
			Action:  "Another writer inserted the row; re-run ingestion",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "A row with this character_id already exists",
			Action:  "Another writer inserted the row; re-run ingestion",
			Code:    "DB001",
		},
	},
	{
		pattern: "no column named",
		msg: UserMessage{
			Message: "Snapshot has a column the relation does not define",
			Action:  "Remove the column from the export or add it to the relation",
			Code:    "DB002",
		},
	},
	{
		pattern: "sqlstate 42703",
		msg: UserMessage{
			Message: "Snapshot has a column the relation does not define",
			Action:  "Remove the column from the export or add it to the relation",
			Code:    "DB002",
		},
	},
	{
		pattern: "no such table",
		msg: UserMessage{
			Message: "Target relation does not exist",
			Action:  "Run init-db to create the relations",
			Code:    "DB003",
		},
	},
	{
		pattern: "sqlstate 42p01",
		msg: UserMessage{
			Message: "Target relation does not exist",
			Action:  "Run init-db to create the relations",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Check DATABASE_URL and that the database is up",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Re-run ingestion",
			Code:    "DB005",
		},
	},

	// Run errors
	{
		pattern: "ingestion run already in progress",
		msg: UserMessage{
			Message: "Another ingestion run is active",
			Action:  "Wait for it to finish",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Ingestion was cancelled",
			Action:  "Re-run ingestion",
			Code:    "RUN002",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Re-run ingestion",
			Code:    "DB006",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Re-run ingestion",
			Code:    "DB006",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for the run",
	Code:    "ERR000",
}

// MapError converts a technical error to an operator-facing message.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
