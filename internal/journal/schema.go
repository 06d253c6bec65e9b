package journal

// schemaVersion1 is the initial journal schema.
const schemaVersion1 = 1

// currentSchemaVersion is the target schema version for this build.
const currentSchemaVersion = schemaVersion1

var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS batches (
	id          TEXT PRIMARY KEY,
	run_id      INTEGER NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	total       INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id    TEXT REFERENCES batches(id),
	run_id      INTEGER NOT NULL,
	case_id     INTEGER NOT NULL,
	status      TEXT NOT NULL DEFAULT '',
	log_id      INTEGER,
	error       TEXT,
	exe_time    INTEGER NOT NULL DEFAULT 0,
	reported_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
CREATE INDEX IF NOT EXISTS idx_results_batch ON results(batch_id);
CREATE INDEX IF NOT EXISTS idx_batches_run ON batches(run_id);
`
