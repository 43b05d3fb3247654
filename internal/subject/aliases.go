package subject

// Canonical subject identifiers referenced directly by the engine.
const (
	Mathematics                    = "mathematics"
	MathematicalLiteracy           = "mathematical literacy"
	TechnicalMathematics           = "technical mathematics"
	LifeOrientation                = "life orientation"
	InformationTechnology          = "information technology"
	ComputerApplicationsTechnology = "computer applications technology"
	PhysicalSciences               = "physical sciences"
	English                        = "english"
	Afrikaans                      = "afrikaans"
)

// subjectAliases maps each canonical non-language subject to the spellings
// and abbreviations seen on report cards and OCR output. Aliases are cleaned
// with the same pipeline as user input when the lookup table is built.
//
// Mathematics, Mathematical Literacy and Technical Mathematics are separate
// subjects and must never alias each other.
var subjectAliases = map[string][]string{
	Mathematics: {
		"maths", "math", "mathematic", "core mathematics", "core maths",
		"pure mathematics", "pure maths", "wiskunde",
	},
	MathematicalLiteracy: {
		"maths literacy", "math literacy", "maths lit", "math lit", "mathlit",
		"mathematics literacy", "wiskundige geletterdheid",
	},
	TechnicalMathematics: {
		"tech maths", "tech math", "technical maths", "technical math",
		"tegniese wiskunde",
	},
	PhysicalSciences: {
		"physical science", "physics", "phys sci", "physical sci",
		"physics and chemistry", "natuur en skeikunde", "fisiese wetenskappe",
	},
	"technical sciences": {
		"technical science", "tech science", "tech sci", "tegniese wetenskappe",
	},
	"life sciences": {
		"life science", "biology", "bio", "lewenswetenskappe",
	},
	LifeOrientation: {
		"lo", "life orient", "lewensorientering",
	},
	"accounting": {
		"accountancy", "accounts", "rekeningkunde",
	},
	"business studies": {
		"business", "business study", "besigheidstudies",
	},
	"economics": {
		"econ", "economic", "ekonomie",
	},
	"geography": {
		"geo", "aardrykskunde",
	},
	"history": {
		"hist", "geskiedenis",
	},
	InformationTechnology: {
		"it", "info tech", "info technology", "inligtingstegnologie",
	},
	ComputerApplicationsTechnology: {
		"cat", "computer applications", "computer application technology",
		"rekenaartoepassingstegnologie",
	},
	"agricultural sciences": {
		"agricultural science", "agric science", "agric sciences",
		"agri science", "landbouwetenskappe",
	},
	"agricultural technology": {
		"agric technology", "agri tech",
	},
	"agricultural management practices": {
		"amp", "agricultural management",
	},
	"engineering graphics and design": {
		"egd", "eg and d", "engineering graphics", "engineering drawing",
		"ingenieursgrafika en ontwerp",
	},
	"civil technology":      {"civil tech"},
	"electrical technology": {"electrical tech"},
	"mechanical technology": {"mechanical tech"},
	"consumer studies":      {"consumer study", "verbruikerstudies"},
	"hospitality studies":   {"hospitality", "hospitality study"},
	"tourism":               {"toerisme"},
	"dramatic arts":         {"drama", "dramatic art"},
	"visual arts":           {"visual art", "art"},
	"music":                 {"musiek"},
	"design":                {"ontwerp"},
	"dance studies":         {"dance"},
	"religion studies":      {"religious studies", "religion"},
	"marine sciences":       {"marine science"},
	"maritime economics":    {"maritime econ"},
	"nautical science":      {"nautical sciences"},
	"sport and exercise science": {
		"sport science", "exercise science",
	},
}

// languageFamilies lists the official school languages with their short forms.
var languageFamilies = map[string][]string{
	English:      {"eng", "engels"},
	Afrikaans:    {"afr", "afrik"},
	"isizulu":    {"zulu"},
	"isixhosa":   {"xhosa"},
	"isindebele": {"ndebele"},
	"sesotho":    {"sotho", "southern sotho"},
	"sepedi":     {"pedi", "northern sotho", "sesotho sa leboa"},
	"setswana":   {"tswana"},
	"siswati":    {"swati"},
	"tshivenda":  {"venda"},
	"xitsonga":   {"tsonga"},
}

// levelSpellings lists how each language level is written after a language
// family, in clean form. The first entry is the canonical suffix.
var levelSpellings = map[Level][]string{
	HomeLanguage: {
		"home language", "hl", "home lang", "home", "1st language", "first language",
	},
	FirstAdditional: {
		"first additional language", "fal", "first additional", "1st additional language",
		"1st additional", "first add lang",
	},
	SecondAdditional: {
		"second additional language", "sal", "second additional", "2nd additional language",
		"2nd additional",
	},
}

// displayOverrides holds display names that simple title-casing gets wrong.
var displayOverrides = map[string]string{
	"isizulu":    "isiZulu",
	"isixhosa":   "isiXhosa",
	"isindebele": "isiNdebele",
	"siswati":    "SiSwati",
}
