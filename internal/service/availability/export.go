package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/availability-api/internal/model"
)

const (
	ExportXLSX = "xlsx"
	ExportJSON = "json"

	exportSheet = "Availability"
)

type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

var exportHeaders = []string{
	"Date", "Start", "End", "Duration (min)", "Type", "Status", "Timezone",
	"Recurrence", "Recurrence End", "Location", "Address", "Room",
	"Fee", "Currency", "Accepts Insurance", "Max Appointments", "Tags", "Notes",
}

// Export renders the filtered slots as a spreadsheet or a JSON document.
func (s *Service) Export(ctx context.Context, filter *model.SlotFilter, format string) (*ExportFile, error) {
	if format == "" {
		format = ExportXLSX
	}
	if format != ExportXLSX && format != ExportJSON {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	slots, err := s.ListSlots(ctx, filter)
	if err != nil {
		return nil, err
	}

	name := "availability-" + s.now().UTC().Format("20060102-150405")
	if format == ExportJSON {
		data, err := json.MarshalIndent(slots, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode export: %w", err)
		}
		return &ExportFile{Name: name + ".json", ContentType: "application/json", Data: data}, nil
	}

	data, err := slotsToXLSX(slots)
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Name:        name + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
	}, nil
}

func slotsToXLSX(slots []*model.AvailabilitySlot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(exportSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range exportHeaders {
		c, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, c, h)
	}
	last, _ := excelize.ColumnNumberToName(len(exportHeaders))
	f.SetCellStyle(exportSheet, "A1", last+"1", headerStyle)
	f.SetColWidth(exportSheet, "A", last, 14)

	statusStyles := map[model.SlotStatus]int{}
	for i, slot := range slots {
		row := i + 2
		values := []interface{}{
			slot.Date, slot.StartTime, slot.EndTime, slot.Duration, string(slot.Type), string(slot.Status), slot.Timezone,
			string(slot.Recurrence), slot.RecurrenceEndDate, string(slot.Location.Type), slot.Location.Address, slot.Location.Room,
			slot.Pricing.Fee, slot.Pricing.Currency, slot.Pricing.AcceptsInsurance, slot.MaxAppointments,
			strings.Join(slot.Tags, ", "), slot.Notes,
		}
		for col, v := range values {
			c, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheet, c, v)
		}

		style, ok := statusStyles[slot.Status]
		if !ok {
			style, _ = f.NewStyle(&excelize.Style{
				Font: &excelize.Font{Bold: true, Color: slot.Status.Color()},
			})
			statusStyles[slot.Status] = style
		}
		c, _ := excelize.CoordinatesToCellName(6, row)
		f.SetCellStyle(exportSheet, c, c, style)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
