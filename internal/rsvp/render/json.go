package render

import (
	"encoding/json"
	"io"

	"rsvp-collector/internal/models"
)

// ListResponse is the body of GET /rsvp. Each guest is a positional
// [created_at, name, email, attend, msg] tuple; msg is null when absent.
type ListResponse struct {
	Count  int     `json:"count"`
	Guests [][]any `json:"guests"`
}

func NewListResponse(rows []models.GuestResponse) ListResponse {
	guests := make([][]any, 0, len(rows))
	for _, r := range rows {
		var msg any
		if r.Msg != nil {
			msg = *r.Msg
		}
		guests = append(guests, []any{r.CreatedAtString(), r.Name, r.Email, r.Attend, msg})
	}
	return ListResponse{Count: len(rows), Guests: guests}
}

func WriteJSONList(w io.Writer, rows []models.GuestResponse) error {
	return json.NewEncoder(w).Encode(NewListResponse(rows))
}
