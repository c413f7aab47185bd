package data

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

const dayFormat = "2006-01-02"

var (
	insertVerdict = `INSERT INTO verdict (model, verdict, day) VALUES (?, ?, ?)`

	selectSummary = `SELECT verdict, COUNT(*) FROM verdict WHERE day >= ? GROUP BY verdict ORDER BY verdict`
)

// Summary is the number of verdicts per label since a given day.
type Summary struct {
	Since  string           `json:"since" yaml:"since"`
	Total  int64            `json:"total" yaml:"total"`
	Counts map[string]int64 `json:"counts" yaml:"counts"`
}

// SaveVerdict records one verdict. Only the label and model name are stored.
func SaveVerdict(db *sql.DB, model, verdict string, on time.Time) error {
	if db == nil {
		return errDBNotInitialized
	}

	if model == "" || verdict == "" {
		return errors.Errorf("model: %s, verdict: %s are both required", model, verdict)
	}

	if _, err := db.Exec(insertVerdict, model, verdict, on.UTC().Format(dayFormat)); err != nil {
		return errors.Wrap(err, "failed to insert verdict")
	}

	return nil
}

// GetSummary returns verdict counts recorded on or after since.
func GetSummary(db *sql.DB, since time.Time) (*Summary, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	s := &Summary{
		Since:  since.UTC().Format(dayFormat),
		Counts: make(map[string]int64),
	}

	rows, err := db.Query(selectSummary, s.Since)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query verdict summary")
	}
	defer rows.Close()

	for rows.Next() {
		var verdict string
		var count int64
		if err := rows.Scan(&verdict, &count); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		s.Counts[verdict] = count
		s.Total += count
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate verdict rows")
	}

	return s, nil
}
