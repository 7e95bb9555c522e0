package service

import (
	"math"
	"net/url"
	"strconv"

	"rsvp-collector/internal/models"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 25
	MaxPageSize     = 200

	// MaxPage keeps (page-1)*size and page*size within int. Any page this
	// far out is past the data anyway.
	MaxPage = math.MaxInt / MaxPageSize
)

// DashboardQuery is a normalized dashboard request. Build it with
// NewDashboardQuery or ParseDashboardQuery; both clamp and fall back so a
// DashboardQuery is always valid.
type DashboardQuery struct {
	Search string
	Attend string
	Sort   models.SortKey
	Page   int
	Size   int
}

func NewDashboardQuery(search, attend, order string, page, size int) DashboardQuery {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return DashboardQuery{
		Search: search,
		Attend: models.ParseAttend(attend),
		Sort:   models.ParseSortKey(order),
		Page:   page,
		Size:   size,
	}
}

// ParseDashboardQuery reads q, attend, order, page and size. Values that do
// not parse are replaced by their defaults.
func ParseDashboardQuery(v url.Values) DashboardQuery {
	return NewDashboardQuery(
		v.Get("q"),
		v.Get("attend"),
		v.Get("order"),
		intOr(v.Get("page"), DefaultPage),
		intOr(v.Get("size"), DefaultPageSize),
	)
}

func intOr(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func (q DashboardQuery) Offset() int {
	return (q.Page - 1) * q.Size
}

func (q DashboardQuery) Limit() int {
	return q.Size
}

func (q DashboardQuery) Filter() models.Filter {
	return models.Filter{Search: q.Search, Attend: q.Attend}
}

func (q DashboardQuery) WithPage(page int) DashboardQuery {
	return NewDashboardQuery(q.Search, q.Attend, string(q.Sort), page, q.Size)
}

// Values encodes the query for a dashboard link. q and attend are only
// present when active.
func (q DashboardQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	v.Set("order", string(q.Sort))
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Attend != "" {
		v.Set("attend", q.Attend)
	}
	return v
}

// DashboardPage is one page of matching responses plus the total match count.
type DashboardPage struct {
	Query DashboardQuery
	Rows  []models.GuestResponse
	Total int
}

func (p DashboardPage) HasPrev() bool {
	return p.Query.Page > 1
}

func (p DashboardPage) HasNext() bool {
	return p.Query.Page*p.Query.Size < p.Total
}
