package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/coursedraft/internal/outline"
)

// ContactSheet writes one contact list as a spreadsheet.
type ContactSheet struct {
	List outline.ContactList
}

func (s ContactSheet) Format() string {
	if s.List == outline.Leads {
		return "leads.xlsx"
	}
	return "instructors.xlsx"
}

func (s ContactSheet) Extension() string {
	if s.List == outline.Leads {
		return "_Leads.xlsx"
	}
	return "_Instructors.xlsx"
}

func (ContactSheet) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (s ContactSheet) Encode(w io.Writer, c *outline.Course) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Potential Instructors"
	header := []any{"Name", "Title", "LinkedIn", "Location", "Score", "Summary"}
	rows := make([][]any, 0, len(c.PotentialInstructors))
	if s.List == outline.Leads {
		sheet = "Potential Leads"
		header = []any{"Name", "Role/Title", "Reason/Summary", "LinkedIn", "Location", "Score"}
		for _, l := range c.PotentialLeads {
			if l.IsCompany() {
				rows = append(rows, []any{l.Name, "Company", l.Why(), l.LinkedIn, l.Location, score(l.RelevancyScore)})
			} else {
				rows = append(rows, []any{l.Name, l.Title, l.ExpertiseSummary, l.LinkedIn, l.Location, score(l.RelevancyScore)})
			}
		}
	} else {
		for _, p := range c.PotentialInstructors {
			rows = append(rows, []any{p.Name, p.Title, p.LinkedIn, p.Location, score(p.RelevancyScore), p.ExpertiseSummary})
		}
	}

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "F", 24); err != nil {
		return err
	}
	return f.Write(w)
}

// score leaves unscored contacts blank rather than writing 0.
func score(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
