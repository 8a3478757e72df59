package report

import (
	"io"
	"time"

	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/utils"
)

var AttendanceCSVHeader = []string{
	"Date", "Morning In", "Morning Out", "Afternoon In", "Afternoon Out", "Evening In", "Evening Out", "Total Hours", "Status",
}

func WriteAttendanceCSV(w io.Writer, records []model.AttendanceRecord, loc *time.Location) error {
	rows := utils.Map(records, func(r model.AttendanceRecord) []string {
		return []string{
			r.Date.Format(utils.DateLayout),
			utils.FormatClock(r.MorningIn, loc),
			utils.FormatClock(r.MorningOut, loc),
			utils.FormatClock(r.AfternoonIn, loc),
			utils.FormatClock(r.AfternoonOut, loc),
			utils.FormatClock(r.EveningIn, loc),
			utils.FormatClock(r.EveningOut, loc),
			utils.FormatHours(r.TotalHours),
			string(r.Status),
		}
	})
	return utils.WriteCSV(w, AttendanceCSVHeader, rows)
}
