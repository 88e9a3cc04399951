// Package listing defines the company listing record extracted from articles.
package listing

// Listing is one structured entity record (one company) extracted from a
// page. Keys are canonical snake_case; callers may attach extra fields
// beyond the required set.
type Listing map[string]any

// RequiredKeys is the fixed set of keys every listing carries. Values
// default to the empty string when unknown so downstream consumers never
// fail on missing-key lookups.
var RequiredKeys = []string{
	"company",
	"company_info",
	"focus",
	"region",
	"company_size",
	"raised_funding",
	"recent_developments",
	"partnerships",
	"media_mentions",
	"humanoid_robotics_use_case",
	"single_use_cases",
	"task_streamlining",
	"project_launch_date",
	"relevancy_score",
	"correlation_reason",
	"article_name",
	"article_summary",
	"article_date",
	"article_url",
}

// LaunchDatePlaceholder marks an unknown project launch date.
const LaunchDatePlaceholder = "TBD"

// Backfill sets every required key missing from the listing to the empty
// string, guaranteeing a uniform row shape.
func (l Listing) Backfill() {
	for _, key := range RequiredKeys {
		if _, ok := l[key]; !ok {
			l[key] = ""
		}
	}
}

// GetString returns the listing value for key as a string, or "" when the
// key is absent or holds a non-string value.
func (l Listing) GetString(key string) string {
	v, ok := l[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// Company returns the listing's company name, if any.
func (l Listing) Company() string {
	return l.GetString("company")
}

// NeedsLaunchDate reports whether the launch-date field is missing or still
// the placeholder.
func (l Listing) NeedsLaunchDate() bool {
	date := l.GetString("project_launch_date")
	return date == "" || date == LaunchDatePlaceholder
}

// FromAny converts a decoded JSON object into a Listing. Returns nil when
// the value is not an object.
func FromAny(v any) Listing {
	switch m := v.(type) {
	case map[string]any:
		return Listing(m)
	case Listing:
		return m
	}
	return nil
}
