package extraction

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nursingDuties = "We are hiring a registered nurse to provide direct patient care on a busy " +
	"medical surgical unit, coordinate with physicians, administer medications, and educate families."

func TestClean_PlainText(t *testing.T) {
	content, err := NewCleaner(0).Clean("  Registered Nurse\n\n\t" + nursingDuties + "  ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content.Text, "Registered Nurse We are hiring"))
	assert.Equal(t, utf8.RuneCountInString(content.Text), content.Length)
	assert.NotContains(t, content.Text, "  ")
}

func TestClean_RemovesBoilerplateCaseInsensitive(t *testing.T) {
	raw := "Skip to main content SIGN IN Cookie Privacy Policy " + nursingDuties +
		" Apply Now Share this job Save Job indeed.com Terms of Service"

	content, err := NewCleaner(0).Clean(raw)
	require.NoError(t, err)

	lower := strings.ToLower(content.Text)
	for _, phrase := range boilerplate {
		assert.NotContains(t, lower, phrase)
	}
	assert.Contains(t, content.Text, "registered nurse")
}

func TestClean_OnlyBoilerplateIsTooShort(t *testing.T) {
	raw := `<html><body>
		<nav>Menu Sign in Log in Create account</nav>
		<div>Cookie settings. Privacy Policy. Terms of Service.</div>
		<div>Apply now</div><div>Share this job</div><div>Save job</div>
		<footer>LinkedIn.com Glassdoor.com Indeed.com</footer>
	</body></html>`

	_, err := NewCleaner(0).Clean(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooShort))

	var tooShort *TooShortError
	require.ErrorAs(t, err, &tooShort)
	assert.Less(t, tooShort.Length, MinContentChars)
	assert.Equal(t, MinContentChars, tooShort.Min)
}

func TestClean_TruncatesToMaxLength(t *testing.T) {
	raw := strings.Repeat("Patient care and clinical excellence. ", 200)

	cleaned := collapseWhitespace(raw)
	require.Greater(t, utf8.RuneCountInString(cleaned), MaxJobDescriptionLength)

	content, err := NewCleaner(0).Clean(raw)
	require.NoError(t, err)
	assert.Equal(t, MaxJobDescriptionLength, content.Length)
	assert.Equal(t, MaxJobDescriptionLength, utf8.RuneCountInString(content.Text))
	assert.True(t, strings.HasPrefix(cleaned, content.Text))
}

func TestClean_TruncatesMultibyteByCharacters(t *testing.T) {
	raw := strings.Repeat("é", 150)

	content, err := NewCleaner(120).Clean(raw)
	require.NoError(t, err)
	assert.Equal(t, 120, content.Length)
	assert.Equal(t, strings.Repeat("é", 120), content.Text)
}

func TestClean_HTMLPrefersDescriptionRegion(t *testing.T) {
	raw := `<!DOCTYPE html><html><head><title>Job</title><style>.x{color:red}</style></head>
	<body>
		<header>Acme Careers Home</header>
		<div class="sidebar">Related jobs: Janitor, Cook</div>
		<div id="jobDescriptionText">
			<h2>About the role</h2>
			<p>` + nursingDuties + `</p>
			<ul><li>BSN required</li><li>Two years acute care experience</li></ul>
			<p>Competitive salary with full benefits and tuition reimbursement for continuing education.</p>
		</div>
		<script>var tracking = "should not appear";</script>
	</body></html>`

	content, err := NewCleaner(0).Clean(raw)
	require.NoError(t, err)
	assert.Contains(t, content.Text, "About the role")
	assert.Contains(t, content.Text, "BSN required Two years acute care experience")
	assert.NotContains(t, content.Text, "Related jobs")
	assert.NotContains(t, content.Text, "should not appear")
	assert.NotContains(t, content.Text, "color:red")
}

func TestClean_HTMLFallsBackToBody(t *testing.T) {
	raw := `<html><body><main>Short main.</main><p>` + nursingDuties + `</p></body></html>`

	content, err := NewCleaner(0).Clean(raw)
	require.NoError(t, err)
	assert.Contains(t, content.Text, "Short main.")
	assert.Contains(t, content.Text, "registered nurse")
}

func TestClean_BlockBoundariesDoNotMergeWords(t *testing.T) {
	raw := `<html><body><div><p>Alpha</p><p>Beta</p></div><p>` + nursingDuties + `</p></body></html>`

	content, err := NewCleaner(0).Clean(raw)
	require.NoError(t, err)
	assert.Contains(t, content.Text, "Alpha Beta")
	assert.NotContains(t, content.Text, "AlphaBeta")
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("<html><body>x</body></html>"))
	assert.True(t, LooksLikeHTML("<DIV class='a'>x</DIV>"))
	assert.True(t, LooksLikeHTML("<p>x</p>"))
	assert.False(t, LooksLikeHTML("Salary < 100k and > 50k"))
	assert.False(t, LooksLikeHTML("Registered Nurse\nFull time"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
}
