// Package report renders ledger rows as the Daily Time Record (Civil Service
// Form No. 48) and as the attendance CSV export.
package report

import (
	"math"
	"time"

	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/utils"
)

type DTRRow struct {
	Day              int     `json:"day"`
	AMArrival        string  `json:"amArrival"`
	AMDeparture      string  `json:"amDeparture"`
	PMArrival        string  `json:"pmArrival"`
	PMDeparture      string  `json:"pmDeparture"`
	UndertimeHours   int     `json:"undertimeHours"`
	UndertimeMinutes int     `json:"undertimeMinutes"`
	TotalHours       float64 `json:"totalHours"`
	Status           string  `json:"status"`
}

type DTR struct {
	Name          string   `json:"name"`
	Year          int      `json:"year"`
	Month         int      `json:"month"`
	MonthLabel    string   `json:"monthLabel"`
	OfficialHours string   `json:"officialHours"`
	Rows          []DTRRow `json:"rows"`
	TotalHours    float64  `json:"totalHours"`
}

// BuildDTR lays out one row per day of the month. Days without a record stay
// blank. Graveyard records have no afternoon pair, so the evening pair fills
// the P.M. columns.
func BuildDTR(name string, officialHours string, year int, month time.Month, records []model.AttendanceRecord, loc *time.Location) DTR {
	byDay := map[int]model.AttendanceRecord{}
	for _, r := range records {
		if r.Date.Year() == year && r.Date.Month() == month {
			byDay[r.Date.Day()] = r
		}
	}

	dtr := DTR{
		Name:          name,
		Year:          year,
		Month:         int(month),
		MonthLabel:    time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006"),
		OfficialHours: officialHours,
	}

	var total float64
	for d := 1; d <= utils.DaysInMonth(year, month); d++ {
		row := DTRRow{Day: d}
		if r, ok := byDay[d]; ok {
			pmIn, pmOut := r.AfternoonIn, r.AfternoonOut
			if pmIn == nil && pmOut == nil {
				pmIn, pmOut = r.EveningIn, r.EveningOut
			}
			row.AMArrival = utils.FormatClock(r.MorningIn, loc)
			row.AMDeparture = utils.FormatClock(r.MorningOut, loc)
			row.PMArrival = utils.FormatClock(pmIn, loc)
			row.PMDeparture = utils.FormatClock(pmOut, loc)
			row.UndertimeHours = r.UndertimeMinutes / 60
			row.UndertimeMinutes = r.UndertimeMinutes % 60
			row.TotalHours = r.TotalHours
			row.Status = string(r.Status)
			total += r.TotalHours
		}
		dtr.Rows = append(dtr.Rows, row)
	}
	dtr.TotalHours = math.Round(total*100) / 100
	return dtr
}
