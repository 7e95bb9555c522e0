package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TimestampLayout is how created_at is rendered in every output format.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

const (
	AttendYes = "yes"
	AttendNo  = "no"
)

// GuestResponse is one submitted RSVP. Rows are append-only.
type GuestResponse struct {
	bun.BaseModel `bun:"table:rsvp"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
	Name      string    `bun:"name" json:"name"`
	Email     string    `bun:"email" json:"email"`
	Attend    string    `bun:"attend" json:"attend"`
	Msg       *string   `bun:"msg" json:"msg"`
}

// CreatedAtString formats the insert timestamp with TimestampLayout.
func (g GuestResponse) CreatedAtString() string {
	return g.CreatedAt.UTC().Format(TimestampLayout)
}

// MsgString returns the message or "" when none was given.
func (g GuestResponse) MsgString() string {
	if g.Msg == nil {
		return ""
	}
	return *g.Msg
}

// Attending reports whether the guest answered "yes".
func (g GuestResponse) Attending() bool {
	return g.Attend == AttendYes
}

// RSVPRequest is the submission body of POST /rsvp. Pointers let the
// handler tell a missing field from an empty one.
type RSVPRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Attend *string `json:"attend"`
	Msg    *string `json:"msg"`
}

// MissingFields lists the required fields absent from the body.
func (r RSVPRequest) MissingFields() []string {
	var missing []string
	if r.Name == nil {
		missing = append(missing, "name")
	}
	if r.Email == nil {
		missing = append(missing, "email")
	}
	if r.Attend == nil {
		missing = append(missing, "attend")
	}
	return missing
}

// SubmittedEvent is published after a response has been stored.
type SubmittedEvent struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Attend string  `json:"attend"`
	Msg    *string `json:"msg"`
}
