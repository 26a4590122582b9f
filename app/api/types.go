package api

import (
	"github.com/lysyi3m/local-events/app/database"
	"github.com/lysyi3m/local-events/app/report"
)

type Handler struct {
	report    *report.Report
	eventRepo database.EventRepository
	version   string
}
