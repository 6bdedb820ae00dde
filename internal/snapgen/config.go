package snapgen

// Default generation parameters.
const (
	defaultEventsPerYear = 40
	defaultCompetitors   = 200
	defaultParticipation = 35 // percent of the roster entering each event
)

// Config controls one snapshot generation run.
type Config struct {
	// Dir is the directory the snapshot files are written to.
	Dir string
	// EndYear is the most recent calendar year to cover; the two
	// preceding years are generated as well.
	EndYear int
	// EventsPerYear is how many events each covered year gets.
	EventsPerYear int
	// Competitors is the roster size.
	Competitors int
	// Participation is the percentage of the roster entering each event.
	Participation int
	// Seed makes runs reproducible; zero picks a time-based seed.
	Seed int64
}

// normalize fills zero fields with defaults.
func (c *Config) normalize() {
	if c.EventsPerYear <= 0 {
		c.EventsPerYear = defaultEventsPerYear
	}
	if c.Competitors <= 0 {
		c.Competitors = defaultCompetitors
	}
	if c.Participation <= 0 || c.Participation > 100 {
		c.Participation = defaultParticipation
	}
}

// Stats summarizes what a generation run produced.
type Stats struct {
	Events    int
	Sheets    int
	Scores    int
	Seed      int64
	FirstYear int
	LastYear  int
}
