package digest

// GroupByDate files records under their own DateKey, preserving order.
func GroupByDate[T Dated](items []T) map[DateKey][]T {
	out := make(map[DateKey][]T)
	for _, it := range items {
		k := it.DateKey()
		out[k] = append(out[k], it)
	}
	return out
}

// Assemble builds the Document for w: exactly one bundle per window key, with
// an empty sequence wherever a source contributed nothing for that date.
// Records dated outside the window are not filed.
func Assemble(w Window, guardian, nytimes []Article, events []Event, weather []WeatherReading) Document {
	var (
		guardianByDate = GroupByDate(guardian)
		nytimesByDate  = GroupByDate(nytimes)
		eventsByDate   = GroupByDate(events)
		weatherByDate  = GroupByDate(weather)
	)

	doc := make(Document, 3)
	for _, k := range w.Keys() {
		doc[k] = DateBundle{
			GuardianArticles: orEmpty(guardianByDate[k]),
			NYTimesArticles:  orEmpty(nytimesByDate[k]),
			WikiEvents:       orEmpty(eventsByDate[k]),
			Weather:          orEmpty(weatherByDate[k]),
		}
	}
	return doc
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
