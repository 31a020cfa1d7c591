package metadata

// The rule tables below are scanned in order and the first hit wins. Keeping
// the order in data rather than in conditionals makes the resolution of
// overlapping keywords visible and testable. A file name matching several
// tokens resolves to whichever rule appears first; this is a documented
// limitation of the tagging scheme, not something callers should rely on
// beyond the published order.

// Organizations are the known company tokens. A directory anywhere on the
// path matching one of these marks the file as a placement paper, and the
// same list drives company detection in the parent directory and file name.
var Organizations = []string{
	"cocubes",
	"mphasis",
	"valuelabs",
	"zenq",
	"google",
	"microsoft",
	"amazon",
	"apple",
	"meta",
	"netflix",
	"uber",
	"airbnb",
}

// TestIndicators mark a file name as a mock test when no organization
// directory claims it first.
var TestIndicators = []string{"mock", "test", "exam", "quiz"}

// SubjectRule maps a file-name keyword to its canonical subject label.
// Matching ignores whitespace on both sides, so "data structures" in a file
// name hits the "datastructures" keyword.
type SubjectRule struct {
	Keyword string
	Label   string
}

// SubjectRules is the ordered keyword scan for subject detection. Note that
// "java" precedes "javascript": a JavaScript paper whose name spells the
// word out will be tagged Java. The order is preserved from the tagging
// scheme this corpus was built with.
var SubjectRules = []SubjectRule{
	{"python", "Python"},
	{"java", "Java"},
	{"javascript", "JavaScript"},
	{"sql", "SQL"},
	{"algorithms", "Algorithms"},
	{"datastructures", "Data Structures"},
	{"machinelearning", "Machine Learning"},
	{"quant", "Quantitative Aptitude"},
	{"aptitude", "Quantitative Aptitude"},
	{"verbal", "Verbal Ability"},
	{"reasoning", "Logical Reasoning"},
	{"ai", "AI"},
}

// EasyIndicators and HardIndicators drive difficulty detection. The easy
// list is scanned before the hard list, so a name containing tokens from
// both classifies as easy.
var (
	EasyIndicators = []string{"easy", "beginner"}
	HardIndicators = []string{"hard", "advanced", "expert"}
)
