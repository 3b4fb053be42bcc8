package bible

// Section is one of the nine canonical groupings of books. The zero value is
// Pentateuch; sections compare in canonical order.
type Section int

const (
	Pentateuch Section = iota
	Historical
	Poetic
	MajorProphets
	MinorProphets
	Deuterocanon
	Gospels
	ActsEpistles
	Revelation
)

var sectionNames = [...]string{
	Pentateuch:    "Pentateuch",
	Historical:    "Historical",
	Poetic:        "Poetic",
	MajorProphets: "Major Prophets",
	MinorProphets: "Minor Prophets",
	Deuterocanon:  "Deuterocanon",
	Gospels:       "Gospels",
	ActsEpistles:  "Acts & Epistles",
	Revelation:    "Revelation",
}

// NumSections is the number of canonical sections.
const NumSections = len(sectionNames)

func (s Section) String() string {
	if s < 0 || int(s) >= NumSections {
		return "Unknown"
	}
	return sectionNames[s]
}

// NewTestament reports whether the section belongs to the New Testament.
func (s Section) NewTestament() bool {
	return s >= Gospels
}

// Sections returns all sections in canonical order.
func Sections() []Section {
	out := make([]Section, NumSections)
	for i := range out {
		out[i] = Section(i)
	}
	return out
}

var sectionBySlug = map[string]Section{
	// ── Pentateuch ────────────────────────────────────────────────────────────
	"genesis": Pentateuch, "exodus": Pentateuch, "leviticus": Pentateuch,
	"numbers": Pentateuch, "deuteronomy": Pentateuch,
	// ── Historical ────────────────────────────────────────────────────────────
	"joshua": Historical, "judges": Historical, "ruth": Historical,
	"1-samuel": Historical, "2-samuel": Historical,
	"1-kings": Historical, "2-kings": Historical,
	"1-chronicles": Historical, "2-chronicles": Historical,
	"ezra": Historical, "nehemiah": Historical, "esther": Historical,
	// ── Poetic ────────────────────────────────────────────────────────────────
	"job": Poetic, "psalms": Poetic, "proverbs": Poetic,
	"ecclesiastes": Poetic, "song-of-solomon": Poetic,
	// ── Prophets ──────────────────────────────────────────────────────────────
	"isaiah": MajorProphets, "jeremiah": MajorProphets, "lamentations": MajorProphets,
	"ezekiel": MajorProphets, "daniel": MajorProphets,
	"hosea": MinorProphets, "joel": MinorProphets, "amos": MinorProphets,
	"obadiah": MinorProphets, "jonah": MinorProphets, "micah": MinorProphets,
	"nahum": MinorProphets, "habakkuk": MinorProphets, "zephaniah": MinorProphets,
	"haggai": MinorProphets, "zechariah": MinorProphets, "malachi": MinorProphets,
	// ── New Testament ─────────────────────────────────────────────────────────
	"matthew": Gospels, "mark": Gospels, "luke": Gospels, "john": Gospels,
	"acts": ActsEpistles, "romans": ActsEpistles,
	"1-corinthians": ActsEpistles, "2-corinthians": ActsEpistles,
	"galatians": ActsEpistles, "ephesians": ActsEpistles,
	"philippians": ActsEpistles, "colossians": ActsEpistles,
	"1-thessalonians": ActsEpistles, "2-thessalonians": ActsEpistles,
	"1-timothy": ActsEpistles, "2-timothy": ActsEpistles,
	"titus": ActsEpistles, "philemon": ActsEpistles, "hebrews": ActsEpistles,
	"james": ActsEpistles, "1-peter": ActsEpistles, "2-peter": ActsEpistles,
	"1-john": ActsEpistles, "2-john": ActsEpistles, "3-john": ActsEpistles,
	"jude": ActsEpistles,
	"revelation": Revelation,
}

// CanonicalSection classifies a book slug. Deuterocanonical books and any
// slug outside the Protestant canon classify as Deuterocanon.
func CanonicalSection(slug string) Section {
	if s, ok := sectionBySlug[slug]; ok {
		return s
	}
	return Deuterocanon
}
