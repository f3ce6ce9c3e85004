package recommend

// DefaultContentType is assigned when an entry carries no type label.
const DefaultContentType = "anime"

// Record is a single recommendation extracted from one paragraph.
// Empty Year, Genre and Appeal mean the field was absent.
type Record struct {
	Title       string `json:"title"`
	Year        string `json:"year,omitempty"`
	Genre       string `json:"genre,omitempty"`
	ContentType string `json:"content_type"`
	Description string `json:"description"`
	Appeal      string `json:"appeal,omitempty"`
}

// HasYear reports whether a year token was found next to the title.
func (r Record) HasYear() bool {
	return r.Year != ""
}

// Document is the structured form of one recommendation reply.
type Document struct {
	Theme        string   `json:"theme,omitempty"`
	Top          []Record `json:"top_recommendations"`
	HiddenGems   []Record `json:"hidden_gems"`
	WhereToWatch string   `json:"where_to_watch,omitempty"`
}

// Empty reports whether no section produced any content.
func (d Document) Empty() bool {
	return d.Theme == "" && len(d.Top) == 0 && len(d.HiddenGems) == 0 && d.WhereToWatch == ""
}

// RecordCount returns the number of records across both list sections.
func (d Document) RecordCount() int {
	return len(d.Top) + len(d.HiddenGems)
}
