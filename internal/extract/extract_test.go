package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upworkFixture = `<html><body>
<article data-test="JobTile" data-ev-job-uid="uid-100">
  <h2 class="job-tile-title"><a data-test="job-tile-title-link" href="/jobs/go-scraper">Go scraper needed</a></h2>
  <small data-test="job-pubilshed-date">2 hours ago</small>
  <ul data-test="JobInfo"><li>Est. budget: $500</li><li>Entry Level</li></ul>
  <div data-test="UpCLineClamp JobDescription"><div class="air3-line-clamp"><p>Build a scraper for listings.</p></div></div>
  <div data-test="TokenClamp JobAttrs">
    <div class="air3-token"><span>Go</span></div>
    <div class="air3-token"><span>SQL</span></div>
    <div class="air3-token"><span>+2</span></div>
  </div>
</article>
<article data-test="JobTile">
  <p>Listing without an id or link.</p>
</article>
</body></html>`

const pythonOrgFixture = `<html><head><title>Python Job Board</title></head><body>
<p>python software foundation</p>
<ol class="list-recent-jobs">
  <li>
    <h2 class="listing-company"><a href="/jobs/1/">Backend Developer</a></h2>
    <span class="listing-company-category"><a href="#">Developer / Engineer</a></span>
    <span class="listing-job-type">Python, Django</span>
    <span class="listing-posted"><time>01 June 2025</time></span>
  </li>
  <li>
    <h2 class="listing-company"><a href="/jobs/2/">Data Engineer</a></h2>
    <span class="listing-job-type">Python</span>
  </li>
</ol>
</body></html>`

func TestDetectSite(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		urlHint string
		want    string
	}{
		{name: "url hint python", html: "<html></html>", urlHint: "https://www.python.org/jobs/", want: SitePythonOrg},
		{name: "url hint upwork", html: "<html></html>", urlHint: "https://www.upwork.com/nx/search/jobs/", want: SiteUpwork},
		{name: "url hint beats content", html: upworkFixture, urlHint: "https://python.org/jobs", want: SitePythonOrg},
		{name: "content marker python", html: pythonOrgFixture, want: SitePythonOrg},
		{name: "content marker upwork", html: upworkFixture, want: SiteUpwork},
		{name: "no markers", html: "<html><body><h1>News</h1></body></html>", want: SiteGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectSite(tt.html, tt.urlHint))
		})
	}
}

func TestRecordsUpwork(t *testing.T) {
	candidates, stats, err := Records(upworkFixture, RulesForSite(SiteUpwork))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.ElementsFound)
	assert.Equal(t, 1, stats.Extracted)
	assert.Equal(t, 1, stats.DroppedNoKey, "tile without uid or link is dropped")

	require.Len(t, candidates, 1)
	c := candidates[0]
	assert.Equal(t, "uid-100", c.NaturalKey)
	assert.Equal(t, SiteUpwork, c.Site)
	assert.Equal(t, "Go scraper needed", c.Title)
	assert.Equal(t, "https://www.upwork.com/jobs/go-scraper", c.URL)
	assert.Equal(t, "Build a scraper for listings.", c.Description)
	assert.Equal(t, "Est. budget: $500", c.Budget)
	assert.Equal(t, "2 hours ago", c.PostedAt)
	assert.Equal(t, []string{"Go", "SQL"}, c.Skills, "more-chip is skipped")
}

func TestRecordsPythonOrg(t *testing.T) {
	candidates, stats, err := Records(pythonOrgFixture, RulesForSite(SitePythonOrg))
	require.NoError(t, err)

	assert.Equal(t, `ol.list-recent-jobs li`, stats.Selector)
	require.Len(t, candidates, 2)

	c := candidates[0]
	assert.Equal(t, "https://python.org/jobs/1/", c.NaturalKey, "url doubles as the natural key")
	assert.Equal(t, "Backend Developer", c.Title)
	assert.Equal(t, []string{"Python", "Django"}, c.Skills, "comma-joined types are split")
	assert.Equal(t, "01 June 2025", c.PostedAt)

	assert.Equal(t, "Data Engineer", candidates[1].Title)
}

func TestRecordsGenericContainers(t *testing.T) {
	html := `<html><body>
	<div class="job-listing"><h3>Frontend role</h3><a href="/careers/frontend">Apply</a><p>React work.</p></div>
	<div class="job-listing"><h3>Backend role</h3><a href="/careers/backend">Apply</a><p>Go work.</p></div>
	</body></html>`

	candidates, stats, err := Records(html, RulesForSite(SiteGeneric))
	require.NoError(t, err)

	assert.False(t, stats.LinkFallbackUsed)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Frontend role", candidates[0].Title)
	assert.Equal(t, "/careers/frontend", candidates[0].NaturalKey)
}

func TestRecordsGenericLinkFallback(t *testing.T) {
	html := `<html><body>
	<a href="/careers/dev">Developer opening</a>
	<a href="/about">About us</a>
	<a href="/jobs?sort=new">sort jobs</a>
	</body></html>`

	candidates, stats, err := Records(html, RulesForSite(SiteGeneric))
	require.NoError(t, err)

	assert.True(t, stats.LinkFallbackUsed)
	require.Len(t, candidates, 1, "navigation and filter links are skipped")
	assert.Equal(t, "Developer opening", candidates[0].Title)
	assert.Equal(t, "/careers/dev", candidates[0].URL)
}

func TestRecordsEmptyDocument(t *testing.T) {
	candidates, stats, err := Records("<html><body></body></html>", RulesForSite(SiteUpwork))
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Equal(t, 0, stats.ElementsFound)
}

func TestRulesForSiteUnknownKind(t *testing.T) {
	rules := RulesForSite("something-else")
	assert.Equal(t, SiteGeneric, rules.Site)
	assert.True(t, rules.LinkFallback)
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short string untouched", in: "hello", max: 10, want: "hello"},
		{name: "ascii cut", in: "abcdef", max: 3, want: "abc..."},
		{name: "cut lands mid rune", in: strings.Repeat("é", 10), max: 5, want: strings.Repeat("é", 2) + "..."},
		{name: "cut on rune boundary", in: strings.Repeat("é", 10), max: 6, want: strings.Repeat("é", 3) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
