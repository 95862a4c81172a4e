package migrations

import "github.com/fahadnasir13/actuaryhub-backend/common/database/schema"

var CreateJobPostingsTable = schema.Migration{
	Version:     1,
	Description: "Create job_postings table",
	Up: `
		CREATE TABLE IF NOT EXISTS job_postings (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			company TEXT NOT NULL,
			location TEXT NOT NULL,
			posting_date DATE NOT NULL DEFAULT CURRENT_DATE,
			job_type TEXT NOT NULL DEFAULT 'Full-time',
			tags TEXT[] NOT NULL DEFAULT '{}',
			description TEXT,
			salary TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`,
	Down: `DROP TABLE IF EXISTS job_postings`,
}

var IndexJobPostings = schema.Migration{
	Version:     2,
	Description: "Index job_postings filter and sort columns",
	Up: `
		CREATE INDEX IF NOT EXISTS job_postings_job_type_idx ON job_postings (job_type);
		CREATE INDEX IF NOT EXISTS job_postings_posting_date_idx ON job_postings (posting_date DESC, id)
	`,
	Down: `
		DROP INDEX IF EXISTS job_postings_posting_date_idx;
		DROP INDEX IF EXISTS job_postings_job_type_idx
	`,
}

// All lists every migration in version order.
func All() []schema.Migration {
	return []schema.Migration{
		CreateJobPostingsTable,
		IndexJobPostings,
	}
}
