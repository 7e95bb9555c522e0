package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"rsvp-collector/internal/models"
)

var csvHeader = []string{"id", "created_at", "name", "email", "attend", "msg"}

// WriteCSV writes rows in the given order with a header line. Lines end in
// CRLF; a missing message is an empty field.
func WriteCSV(w io.Writer, rows []models.GuestResponse) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.ID, 10),
			r.CreatedAtString(),
			r.Name,
			r.Email,
			r.Attend,
			r.MsgString(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
