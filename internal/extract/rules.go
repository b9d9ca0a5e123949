package extract

// FieldRule extracts one candidate field. Selectors are tried in order
// against the container element; the first match wins. An empty selector
// addresses the container itself. When Attr is set, the attribute value is
// taken instead of the element text. Default fills in when nothing matches.
type FieldRule struct {
	Field     string   `json:"field"`
	Selectors []string `json:"selectors"`
	Attr      string   `json:"attr,omitempty"`
	Default   string   `json:"default,omitempty"`
}

// RuleSet describes how to carve candidates out of a page. Containers are
// tried in order and the first selector yielding any elements wins; Fields
// are then evaluated independently against each container element.
type RuleSet struct {
	Site       string      `json:"site"`
	Containers []string    `json:"containers"`
	Fields     []FieldRule `json:"fields"`

	// URLPrefix is prepended to relative URL field values.
	URLPrefix string `json:"url_prefix,omitempty"`

	// LinkFallback scans keyword-matching links when no container selector
	// produced elements.
	LinkFallback bool `json:"link_fallback,omitempty"`
}

// Well-known field names recognized by Records.
const (
	FieldNaturalKey  = "natural_key"
	FieldURL         = "url"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldBudget      = "budget"
	FieldSkills      = "skills"
	FieldPostedAt    = "posted_at"
)

// RulesForSite returns the built-in rule set for a detected site kind.
// Unknown kinds get the generic set.
func RulesForSite(site string) *RuleSet {
	switch site {
	case SiteUpwork:
		return upworkRules()
	case SitePythonOrg:
		return pythonOrgRules()
	default:
		return genericRules()
	}
}

func upworkRules() *RuleSet {
	return &RuleSet{
		Site:      SiteUpwork,
		URLPrefix: "https://www.upwork.com",
		Containers: []string{
			`article[data-test="JobTile"]`,
			`section[data-qa="job-tile"]`,
			`[data-qa="job-tile"]`,
		},
		Fields: []FieldRule{
			{Field: FieldNaturalKey, Selectors: []string{""}, Attr: "data-ev-job-uid"},
			{Field: FieldTitle, Selectors: []string{
				`h2.job-tile-title a[data-test="job-tile-title-link"]`,
				`h2 a[data-qa="job-title"]`,
				`h2 a`,
				`a[data-test="job-tile-title-link"]`,
			}},
			{Field: FieldURL, Selectors: []string{
				`h2.job-tile-title a[data-test="job-tile-title-link"]`,
				`h2 a[data-qa="job-title"]`,
				`h2 a`,
			}, Attr: "href"},
			{Field: FieldDescription, Selectors: []string{
				`[data-test="UpCLineClamp JobDescription"] .air3-line-clamp p`,
				`.air3-line-clamp p`,
				`p`,
			}},
			{Field: FieldBudget, Selectors: []string{`ul[data-test="JobInfo"] li`, `ul li`}},
			{Field: FieldSkills, Selectors: []string{
				`[data-test="TokenClamp JobAttrs"] .air3-token span`,
				`.air3-token span`,
			}},
			{Field: FieldPostedAt, Selectors: []string{
				`small[data-test="job-pubilshed-date"]`,
				`small`,
			}},
		},
	}
}

func pythonOrgRules() *RuleSet {
	return &RuleSet{
		Site:       SitePythonOrg,
		URLPrefix:  "https://python.org",
		Containers: []string{`ol.list-recent-jobs li`},
		Fields: []FieldRule{
			{Field: FieldTitle, Selectors: []string{`h2.listing-company a`}},
			{Field: FieldURL, Selectors: []string{`h2.listing-company a`}, Attr: "href"},
			{Field: FieldDescription, Selectors: []string{`.listing-company-category a`}},
			{Field: FieldSkills, Selectors: []string{`.listing-job-type`}},
			{Field: FieldPostedAt, Selectors: []string{`.listing-posted time`}},
		},
	}
}

func genericRules() *RuleSet {
	return &RuleSet{
		Site: SiteGeneric,
		Containers: []string{
			`ol.list-recent-jobs li`,
			`.job-listing`,
			`.job-item`,
			`.job-post`,
			`.position`,
			`article.job`,
			`.opening`,
			`.vacancy`,
			`li.job`,
			`[class*="job"]`,
			`[class*="position"]`,
			`[class*="opening"]`,
		},
		Fields: []FieldRule{
			{Field: FieldTitle, Selectors: []string{`h1`, `h2`, `h3`, `h4`, `a`, ``}},
			{Field: FieldURL, Selectors: []string{`a[href]`, ``}, Attr: "href"},
			{Field: FieldDescription, Selectors: []string{`p`, ``}},
		},
		LinkFallback: true,
	}
}
