package persistence

import (
	"database/sql"
	"time"
)

type (

	//Recording table
	Recording struct {
		ID         string
		Created    time.Time
		AudioPath  string
		MimeType   string
		Status     string
		Transcript sql.NullString
		Error      sql.NullString
	}
)
