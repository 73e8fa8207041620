package render

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/i474232898/thirty-today/internal/digest"
)

// Publication selects which article list of a bundle a country shows.
type Publication int

const (
	Guardian Publication = iota
	NYTimes
)

func (p Publication) String() string {
	switch p {
	case Guardian:
		return "The Guardian"
	case NYTimes:
		return "The New York Times"
	default:
		return "unknown"
	}
}

func (p Publication) articles(b digest.DateBundle) []digest.Article {
	if p == Guardian {
		return b.GuardianArticles
	}
	return b.NYTimesArticles
}

// Country is one block of the page.
type Country struct {
	Name            string
	TZ              string
	Publication     Publication
	WeatherLocation string
}

// Countries are rendered in this order.
var Countries = []Country{
	{Name: "United States", TZ: "America/New_York", Publication: NYTimes, WeatherLocation: "New York"},
	{Name: "United Kingdom", TZ: "Europe/London", Publication: Guardian, WeatherLocation: "London"},
}

// Page is everything the template needs.
type Page struct {
	Title     string
	Events    []digest.Event
	Countries []CountryView
}

type CountryView struct {
	Name        string
	LocalTime   string
	LocalDate   string
	Publication string
	Weather     *WeatherView
	Sections    []Section
}

type WeatherView struct {
	Location string
	Temp     string
	Humidity string
	Wind     string
}

// Section is one group of a country's articles, split by abstract presence.
type Section struct {
	Name            string
	WithAbstract    []digest.Article
	WithoutAbstract []digest.Article
}

const readingTimeLayout = "2006-01-02 15:00:00"

// Build resolves "today, 30 years ago" for a viewer in viewerTZ and picks the
// matching bundle per country. Keys absent from doc render as empty bundles.
func Build(doc digest.Document, now time.Time, viewerTZ *time.Location) (Page, error) {
	if viewerTZ == nil {
		viewerTZ = time.UTC
	}
	past := digest.YearsBefore(now.In(viewerTZ), digest.YearsBack)

	page := Page{
		Title:  past.Format("Monday, 2 January, 2006"),
		Events: doc.Bundle(digest.KeyOf(past)).WikiEvents,
	}

	for _, c := range Countries {
		loc, err := time.LoadLocation(c.TZ)
		if err != nil {
			return Page{}, fmt.Errorf("load %s timezone: %w", c.Name, err)
		}
		local := past.In(loc)
		bundle := doc.Bundle(digest.KeyOf(local))

		articles := c.Publication.articles(bundle)
		if len(articles) == 0 {
			continue
		}

		page.Countries = append(page.Countries, CountryView{
			Name:        c.Name,
			LocalTime:   local.Format("15:04 (MST)"),
			LocalDate:   local.Format("2 January, 2006"),
			Publication: c.Publication.String(),
			Weather:     weatherAt(bundle.Weather, c.WeatherLocation, local),
			Sections:    GroupSections(articles),
		})
	}
	return page, nil
}

// weatherAt finds the reading for location at local's hour.
func weatherAt(readings []digest.WeatherReading, location string, local time.Time) *WeatherView {
	want := local.Format(readingTimeLayout)
	for _, r := range readings {
		if r.Location.Name == location && r.Time == want {
			return &WeatherView{
				Location: location,
				Temp:     formatMeasure(r.Temp),
				Humidity: formatMeasure(r.RHum),
				Wind:     formatMeasure(r.WSpd),
			}
		}
	}
	return nil
}

func formatMeasure(v *float64) string {
	if v == nil {
		return "–"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// GroupSections groups articles by section name, keeps the last article seen
// for each headline within a section, orders sections by name, and orders
// articles with an abstract before those without, then by headline.
func GroupSections(articles []digest.Article) []Section {
	type group struct {
		order []string
		byKey map[string]digest.Article
	}
	groups := make(map[string]*group)

	for _, a := range articles {
		g, ok := groups[a.Section]
		if !ok {
			g = &group{byKey: make(map[string]digest.Article)}
			groups[a.Section] = g
		}
		if _, seen := g.byKey[a.Headline]; !seen {
			g.order = append(g.order, a.Headline)
		}
		g.byKey[a.Headline] = a
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	col := collate.New(language.English, collate.IgnoreCase)

	sections := make([]Section, 0, len(names))
	for _, name := range names {
		g := groups[name]
		unique := make([]digest.Article, 0, len(g.order))
		for _, h := range g.order {
			unique = append(unique, g.byKey[h])
		}

		sort.SliceStable(unique, func(i, j int) bool {
			ai, aj := unique[i].HasAbstract(), unique[j].HasAbstract()
			if ai != aj {
				return ai
			}
			return col.CompareString(unique[i].Headline, unique[j].Headline) < 0
		})

		s := Section{Name: name}
		for _, a := range unique {
			if a.HasAbstract() {
				s.WithAbstract = append(s.WithAbstract, a)
			} else {
				s.WithoutAbstract = append(s.WithoutAbstract, a)
			}
		}
		sections = append(sections, s)
	}
	return sections
}
