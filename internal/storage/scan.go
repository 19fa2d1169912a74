package storage

import "database/sql"

func scanRuns(rows *sql.Rows) ([]RunRecord, error) {
	var records []RunRecord

	for rows.Next() {
		var record RunRecord

		err := rows.Scan(
			&record.ID,
			&record.SessionID,
			&record.UserID,
			&record.StepIndex,
			&record.StepLabel,
			&record.DurationSec,
			&record.ElapsedSec,
			&record.Outcome,
			&record.RecordedAt,
		)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, rows.Err()
}
