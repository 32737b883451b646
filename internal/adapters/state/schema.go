package state

// currentSchemaVersion tags the persisted record. A loaded record with any
// other version is discarded in full and the store starts from defaults;
// there is no field-by-field migration.
const currentSchemaVersion = 3

type fileSchema struct {
	SchemaVersion int               `toml:"schema_version"`
	SessionID     string            `toml:"session_id"`
	Preferences   preferencesSchema `toml:"preferences"`
}

type preferencesSchema struct {
	Nickname     string `toml:"nickname,omitempty"`
	ColorMode    string `toml:"color_mode,omitempty"`
	TutorialSeen bool   `toml:"tutorial_seen"`
}

func (s fileSchema) versionMatches() bool {
	return s.SchemaVersion == currentSchemaVersion
}
