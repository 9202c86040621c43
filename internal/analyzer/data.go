package analyzer

// Static vocabulary tables for profile analysis. Kept as data so they
// can be extended and tested without touching the analysis logic.

// proficiencyWeights ranks skills by self-assessed level
var proficiencyWeights = map[string]int{
	"expert":       10,
	"advanced":     7,
	"intermediate": 4,
	"beginner":     2,
}

const defaultProficiencyWeight = 4

// skillSynonyms maps canonical skill names to the variants seen in
// profiles and listings. Matching is case-insensitive; the canonical
// form is the map key.
var skillSynonyms = map[string][]string{
	"machine learning":        {"ml", "machine-learning"},
	"deep learning":           {"dl", "deep-learning", "neural networks"},
	"natural language processing": {"nlp"},
	"computer vision":         {"cv"},
	"large language models":   {"llm", "llms", "llm engineering"},
	"generative ai":           {"genai", "gen ai", "generative artificial intelligence"},
	"artificial intelligence": {"ai"},
	"tensorflow":              {"tf", "tensor flow"},
	"pytorch":                 {"torch", "py torch"},
	"scikit-learn":            {"sklearn", "scikit learn"},
	"kubernetes":              {"k8s"},
	"javascript":              {"js", "ecmascript"},
	"typescript":              {"ts"},
	"python":                  {"python3", "py"},
	"go":                      {"golang"},
	"node.js":                 {"node", "nodejs"},
	"react":                   {"react.js", "reactjs"},
	"postgresql":              {"postgres", "psql"},
	"amazon web services":     {"aws"},
	"google cloud platform":   {"gcp", "google cloud"},
	"continuous integration":  {"ci/cd", "cicd", "ci-cd"},
	"mlops":                   {"ml ops", "ml-ops"},
	"langchain":               {"lang chain"},
	"ai agents":               {"agentic ai", "agentic", "agent systems", "multi-agent"},
	"data engineering":        {"etl", "data pipelines"},
}

// criticalSkills carry double weight in match scoring and mark a
// profile as ML/AI-specialized when present.
var criticalSkills = map[string]bool{
	"machine learning":            true,
	"deep learning":               true,
	"natural language processing": true,
	"computer vision":             true,
	"large language models":       true,
	"generative ai":               true,
	"artificial intelligence":     true,
	"tensorflow":                  true,
	"pytorch":                     true,
	"mlops":                       true,
	"langchain":                   true,
	"ai agents":                   true,
}

// mlFallbackTitles fill in when a specialized profile declares no
// preferred titles and has no usable work history
var mlFallbackTitles = []string{
	"Machine Learning Engineer",
	"AI Engineer",
	"Data Scientist",
}

// generalFallbackTitles is the last-resort title list
var generalFallbackTitles = []string{
	"Software Engineer",
	"Backend Engineer",
}

// specializedQueries are fixed high-signal searches added for ML/AI
// profiles in fallback query generation
var specializedQueries = []string{
	"LLM Engineer",
	"AI Agent Engineer",
	"Generative AI Engineer",
}

// defaultLocations guarantee non-empty location output
var defaultLocations = []string{"Zurich, Switzerland", "Remote"}

// countryRegions maps profile countries onto board regions. Countries
// not listed fall through to "global".
var countryRegions = map[string]string{
	"switzerland": "ch",
	"schweiz":     "ch",
	"suisse":      "ch",
	"ch":          "ch",
}
