package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"rsvp-collector/internal/i18n"
	"rsvp-collector/internal/models"
	"rsvp-collector/internal/rsvp/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	DashboardPath = "/rsvp/export/html"
	CSVPath       = "/rsvp/export"

	glyphYes = "✅"
	glyphNo  = "❌"
)

var pageSizes = []int{25, 50, 100}

// Dashboard renders the paginated HTML view. The template is parsed once;
// each render binds the translation function to the request's locale.
type Dashboard struct {
	tmpl       *template.Template
	translator *i18n.Translator
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type rowView struct {
	ID        int64
	CreatedAt string
	Name      string
	Email     string
	Glyph     string
	Msg       string
}

type dashboardView struct {
	BasePath      string
	CSVPath       string
	Search        string
	Page          int
	Size          int
	Total         int
	Rows          []rowView
	AttendOptions []option
	SortOptions   []option
	SizeOptions   []option
	PrevURL       string
	NextURL       string
}

func NewDashboard(translator *i18n.Translator) (*Dashboard, error) {
	tmpl, err := template.New("dashboard.html").
		Funcs(template.FuncMap{"t": func(key string, pairs ...any) string { return key }}).
		ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}
	return &Dashboard{tmpl: tmpl, translator: translator}, nil
}

// Render writes the dashboard for page. locale is a tag or an
// Accept-Language header value.
func (d *Dashboard) Render(w io.Writer, page *service.DashboardPage, locale string) error {
	tmpl, err := d.tmpl.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone dashboard template: %w", err)
	}
	tr := func(key string, pairs ...any) string {
		return d.translator.T(locale, key, templateData(pairs))
	}
	tmpl.Funcs(template.FuncMap{"t": tr})

	if err := tmpl.Execute(w, d.view(page, tr)); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

func (d *Dashboard) view(page *service.DashboardPage, tr func(string, ...any) string) dashboardView {
	q := page.Query

	rows := make([]rowView, 0, len(page.Rows))
	for _, r := range page.Rows {
		glyph := glyphNo
		if r.Attending() {
			glyph = glyphYes
		}
		rows = append(rows, rowView{
			ID:        r.ID,
			CreatedAt: r.CreatedAtString(),
			Name:      r.Name,
			Email:     r.Email,
			Glyph:     glyph,
			Msg:       r.MsgString(),
		})
	}

	v := dashboardView{
		BasePath: DashboardPath,
		CSVPath:  CSVPath,
		Search:   q.Search,
		Page:     q.Page,
		Size:     q.Size,
		Total:    page.Total,
		Rows:     rows,
		AttendOptions: []option{
			{Value: "", Label: tr("AttendAll"), Selected: q.Attend == ""},
			{Value: models.AttendYes, Label: tr("AttendYes"), Selected: q.Attend == models.AttendYes},
			{Value: models.AttendNo, Label: tr("AttendNo"), Selected: q.Attend == models.AttendNo},
		},
		SortOptions: sortOptions(q.Sort, tr),
		SizeOptions: sizeOptions(q.Size),
	}
	if page.HasPrev() {
		v.PrevURL = PageURL(q.WithPage(q.Page - 1))
	}
	if page.HasNext() {
		v.NextURL = PageURL(q.WithPage(q.Page + 1))
	}
	return v
}

// PageURL links to the dashboard with every active filter preserved.
func PageURL(q service.DashboardQuery) string {
	return DashboardPath + "?" + q.Values().Encode()
}

var sortLabels = map[models.SortKey]string{
	models.SortCreatedAtDesc: "SortNewest",
	models.SortCreatedAtAsc:  "SortOldest",
	models.SortNameAsc:       "SortNameAsc",
	models.SortNameDesc:      "SortNameDesc",
}

func sortOptions(current models.SortKey, tr func(string, ...any) string) []option {
	opts := make([]option, 0, len(models.SortKeys))
	for _, k := range models.SortKeys {
		opts = append(opts, option{Value: string(k), Label: tr(sortLabels[k]), Selected: k == current})
	}
	return opts
}

// sizeOptions offers the standard sizes plus the current one when it is
// not among them, so the form round-trips it.
func sizeOptions(current int) []option {
	opts := make([]option, 0, len(pageSizes)+1)
	found := false
	for _, n := range pageSizes {
		s := strconv.Itoa(n)
		opts = append(opts, option{Value: s, Label: s, Selected: n == current})
		found = found || n == current
	}
	if !found {
		s := strconv.Itoa(current)
		opts = append(opts, option{Value: s, Label: s, Selected: true})
	}
	return opts
}

func templateData(pairs []any) map[string]any {
	if len(pairs) == 0 {
		return nil
	}
	data := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if k, ok := pairs[i].(string); ok {
			data[k] = pairs[i+1]
		}
	}
	return data
}
