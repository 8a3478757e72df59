package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const dtrSheet = "DTR"

const (
	dtrHeaderRow = 7
	dtrFirstDay  = 9
)

// WriteDTRXLSX renders the form as a single-sheet workbook.
func WriteDTRXLSX(w io.Writer, dtr DTR) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dtrSheet); err != nil {
		return err
	}

	center, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return err
	}
	title, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	set := func(cell string, v any) {
		f.SetCellValue(dtrSheet, cell, v)
	}

	set("A1", "Civil Service Form No. 48")
	set("A2", "DAILY TIME RECORD")
	set("A4", strings.ToUpper(dtr.Name))
	set("A5", "For the month of "+dtr.MonthLabel)
	set("E5", "Official hours: "+dtr.OfficialHours)
	for _, r := range []string{"A1:G1", "A2:G2", "A4:G4"} {
		cells := strings.Split(r, ":")
		f.MergeCell(dtrSheet, cells[0], cells[1])
	}
	f.SetCellStyle(dtrSheet, "A2", "A2", title)
	f.SetCellStyle(dtrSheet, "A4", "A4", title)

	h := dtrHeaderRow
	set(fmt.Sprintf("A%d", h), "Day")
	set(fmt.Sprintf("B%d", h), "A.M.")
	set(fmt.Sprintf("D%d", h), "P.M.")
	set(fmt.Sprintf("F%d", h), "Undertime")
	f.MergeCell(dtrSheet, fmt.Sprintf("A%d", h), fmt.Sprintf("A%d", h+1))
	f.MergeCell(dtrSheet, fmt.Sprintf("B%d", h), fmt.Sprintf("C%d", h))
	f.MergeCell(dtrSheet, fmt.Sprintf("D%d", h), fmt.Sprintf("E%d", h))
	f.MergeCell(dtrSheet, fmt.Sprintf("F%d", h), fmt.Sprintf("G%d", h))
	for i, sub := range []string{"Arrival", "Departure", "Arrival", "Departure", "Hours", "Minutes"} {
		cell, _ := excelize.CoordinatesToCellName(i+2, h+1)
		set(cell, sub)
	}

	for i, r := range dtr.Rows {
		row := dtrFirstDay + i
		set(fmt.Sprintf("A%d", row), r.Day)
		set(fmt.Sprintf("B%d", row), r.AMArrival)
		set(fmt.Sprintf("C%d", row), r.AMDeparture)
		set(fmt.Sprintf("D%d", row), r.PMArrival)
		set(fmt.Sprintf("E%d", row), r.PMDeparture)
		if r.UndertimeHours > 0 || r.UndertimeMinutes > 0 {
			set(fmt.Sprintf("F%d", row), r.UndertimeHours)
			set(fmt.Sprintf("G%d", row), r.UndertimeMinutes)
		}
	}

	totalRow := dtrFirstDay + len(dtr.Rows)
	set(fmt.Sprintf("A%d", totalRow), "Total")
	set(fmt.Sprintf("F%d", totalRow), fmt.Sprintf("%.2f hrs", dtr.TotalHours))
	f.MergeCell(dtrSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("E%d", totalRow))
	f.MergeCell(dtrSheet, fmt.Sprintf("F%d", totalRow), fmt.Sprintf("G%d", totalRow))
	f.SetCellStyle(dtrSheet, fmt.Sprintf("A%d", h), fmt.Sprintf("G%d", totalRow), center)

	set(fmt.Sprintf("A%d", totalRow+2), "I certify on my honor that the above is a true and correct report of the hours of work performed, "+
		"record of which was made daily at the time of arrival and departure from office.")
	set(fmt.Sprintf("A%d", totalRow+4), "VERIFIED as to the prescribed office hours:")
	set(fmt.Sprintf("A%d", totalRow+7), "IN CHARGE")

	f.SetColWidth(dtrSheet, "A", "A", 6)
	f.SetColWidth(dtrSheet, "B", "G", 12)

	return f.Write(w)
}
