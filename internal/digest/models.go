package digest

// Thumbnail is an optional image attached to an article or event page.
type Thumbnail struct {
	URL    string `json:"thumbnail_url"`
	Width  int    `json:"thumbnail_width"`
	Height int    `json:"thumbnail_height"`
}

// Article is a single news item from one of the news archives.
// Duplicates across pages are possible; the renderer deduplicates by headline.
type Article struct {
	Date       DateKey    `json:"date"`
	Headline   string     `json:"headline"`
	WebURL     string     `json:"web_url"`
	Abstract   *string    `json:"abstract"`
	Thumbnail  *Thumbnail `json:"thumbnail"`
	Section    string     `json:"section"`
	Subsection string     `json:"subsection,omitempty"`
}

// HasAbstract reports whether the article carries a non-empty abstract.
func (a Article) HasAbstract() bool {
	return a.Abstract != nil && *a.Abstract != ""
}

func (a Article) DateKey() DateKey { return a.Date }

// EventPage is a Wikipedia page related to an event.
type EventPage struct {
	Title       string     `json:"title"`
	WebURL      string     `json:"web_url"`
	Description string     `json:"description"`
	Abstract    string     `json:"abstract"`
	Thumbnail   *Thumbnail `json:"thumbnail"`
}

// Event is an "on this day" entry that happened on Date.
type Event struct {
	Date     DateKey     `json:"date"`
	Headline string      `json:"headline"`
	Pages    []EventPage `json:"pages"`
}

func (e Event) DateKey() DateKey { return e.Date }

// Location is a fixed point a weather reading was taken for.
type Location struct {
	Name string  `json:"name"`
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`

	// TZ is the IANA zone reading times are expressed in. Not persisted.
	TZ string `json:"-"`
}

// WeatherReading is one hourly observation for a location.
// Measurements are nil when the station did not report them.
type WeatherReading struct {
	Date     DateKey  `json:"date"`
	Time     string   `json:"time"` // "2006-01-02 15:04:05", local to Location
	Location Location `json:"location"`
	Temp     *float64 `json:"temp"`
	RHum     *float64 `json:"rhum"`
	WSpd     *float64 `json:"wspd"`
}

func (w WeatherReading) DateKey() DateKey { return w.Date }

// DateBundle holds everything filed under a single DateKey.
type DateBundle struct {
	GuardianArticles []Article        `json:"guardian_articles"`
	NYTimesArticles  []Article        `json:"nytimes_articles"`
	WikiEvents       []Event          `json:"wiki_events"`
	Weather          []WeatherReading `json:"weather"`
}

// EmptyBundle returns a bundle whose sequences are empty rather than nil,
// so it serializes as [] for every source.
func EmptyBundle() DateBundle {
	return DateBundle{
		GuardianArticles: []Article{},
		NYTimesArticles:  []Article{},
		WikiEvents:       []Event{},
		Weather:          []WeatherReading{},
	}
}

// Document is the persisted aggregate: DateKey -> bundle.
type Document map[DateKey]DateBundle

// Bundle returns the bundle for key, or an empty one if the key is absent.
func (d Document) Bundle(key DateKey) DateBundle {
	if b, ok := d[key]; ok {
		return b
	}
	return EmptyBundle()
}

// Dated is implemented by every record filed into a Document.
type Dated interface {
	DateKey() DateKey
}
