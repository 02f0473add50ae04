package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions applied by auto-migration. Every event table carries the
// global sequence and a timestamp.

const (
	tablePlayerStates    = "player_states"
	tableWorksheetEvents = "worksheet_events"
	tableArtifactEvents  = "artifact_events"
	tableLLMEvents       = "llm_request_events"
)

var (
	// PlayerStatesColumns holds the columns for the "player_states" table.
	PlayerStatesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "key", Type: field.TypeString, Unique: true},
		{Name: "data", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// PlayerStatesTable holds the schema information for the "player_states" table.
	PlayerStatesTable = &schema.Table{
		Name:       tablePlayerStates,
		Columns:    PlayerStatesColumns,
		PrimaryKey: []*schema.Column{PlayerStatesColumns[0]},
	}

	// WorksheetEventsColumns holds the columns for the "worksheet_events" table.
	WorksheetEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "topic", Type: field.TypeString},
		{Name: "grade", Type: field.TypeInt},
		{Name: "score", Type: field.TypeInt},
		{Name: "total", Type: field.TypeInt},
		{Name: "xp_gained", Type: field.TypeInt},
		{Name: "level_after", Type: field.TypeInt},
		{Name: "decision", Type: field.TypeString},
		{Name: "fallback", Type: field.TypeBool, Default: false},
	}
	// WorksheetEventsTable holds the schema information for the "worksheet_events" table.
	WorksheetEventsTable = &schema.Table{
		Name:       tableWorksheetEvents,
		Columns:    WorksheetEventsColumns,
		PrimaryKey: []*schema.Column{WorksheetEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "worksheetevent_timestamp", Unique: false, Columns: []*schema.Column{WorksheetEventsColumns[2]}},
			{Name: "worksheetevent_topic", Unique: false, Columns: []*schema.Column{WorksheetEventsColumns[3]}},
		},
	}

	// ArtifactEventsColumns holds the columns for the "artifact_events" table.
	ArtifactEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "artifact_id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "rarity", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
	}
	// ArtifactEventsTable holds the schema information for the "artifact_events" table.
	ArtifactEventsTable = &schema.Table{
		Name:       tableArtifactEvents,
		Columns:    ArtifactEventsColumns,
		PrimaryKey: []*schema.Column{ArtifactEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "artifactevent_rarity", Unique: false, Columns: []*schema.Column{ArtifactEventsColumns[5]}},
		},
	}

	// LLMRequestEventsColumns holds the columns for the "llm_request_events" table.
	LLMRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LLMRequestEventsTable holds the schema information for the "llm_request_events" table.
	LLMRequestEventsTable = &schema.Table{
		Name:       tableLLMEvents,
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_provider", Unique: false, Columns: []*schema.Column{LLMRequestEventsColumns[3]}},
			{Name: "llmrequestevent_purpose", Unique: false, Columns: []*schema.Column{LLMRequestEventsColumns[5]}},
			{Name: "llmrequestevent_success", Unique: false, Columns: []*schema.Column{LLMRequestEventsColumns[9]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		PlayerStatesTable,
		WorksheetEventsTable,
		ArtifactEventsTable,
		LLMRequestEventsTable,
	}
)
