package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_ScalarSubstitution(t *testing.T) {
	out, err := Render("Hi {{name}}", Context{"name": "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ana", out)
}

func TestRender_AbsentScalarDropped(t *testing.T) {
	out, err := Render("Hi {{name}}, welcome", Context{})
	require.NoError(t, err)
	assert.Equal(t, "Hi , welcome", out)
}

func TestRender_NumberAndBool(t *testing.T) {
	out, err := Render("{{mins}} minutes, confirmed={{ok}}", Context{"mins": 30, "ok": true})
	require.NoError(t, err)
	assert.Equal(t, "30 minutes, confirmed=true", out)
}

func TestRender_FloatWithoutTrailingZeros(t *testing.T) {
	out, err := Render("{{score}}", Context{"score": float64(30)})
	require.NoError(t, err)
	assert.Equal(t, "30", out)
}

func TestRender_ListSection(t *testing.T) {
	out, err := Render("{{#items}}• {{.}}\n{{/items}}", Context{"items": []string{"A", "B"}})
	require.NoError(t, err)
	assert.Equal(t, "• A\n• B", out)
}

func TestRender_EmptyListSectionRemoved(t *testing.T) {
	out, err := Render("before\n{{#items}}• {{.}}\n{{/items}}after", Context{"items": []string{}})
	require.NoError(t, err)
	assert.Equal(t, "before\nafter", out)
}

func TestRender_ListSummaryDerived(t *testing.T) {
	ctx := Context{"value_props": []string{"fast setup", "no code", "cheap"}}
	out, err := Render("{{#value_props}}{{/value_props}}We offer {{value_props_summary}}.", ctx)
	require.NoError(t, err)
	assert.Equal(t, "We offer fast setup and no code.", out)

	// The caller's context is not mutated.
	_, mutated := ctx["value_props_summary"]
	assert.False(t, mutated)
}

func TestRender_SingleElementSummary(t *testing.T) {
	ctx := Context{"value_props": []string{"fast setup"}}
	out, err := Render("{{#value_props}}{{.}}{{/value_props}} ({{value_props_summary}})", ctx)
	require.NoError(t, err)
	assert.Equal(t, "fast setup (fast setup)", out)
}

func TestRender_ConditionalSection(t *testing.T) {
	tpl := "{{#link}}Book: {{link}}{{/link}}"

	out, err := Render(tpl, Context{"link": ""})
	require.NoError(t, err)
	assert.Equal(t, "", out)

	out, err = Render(tpl, Context{"link": "http://x"})
	require.NoError(t, err)
	assert.Equal(t, "Book: http://x", out)
}

func TestRender_ConditionalOnAbsentKey(t *testing.T) {
	out, err := Render("{{#missing}}never{{/missing}}always", Context{})
	require.NoError(t, err)
	assert.Equal(t, "always", out)
}

func TestRender_InvertedSection(t *testing.T) {
	tpl := "{{^link}}No link yet.{{/link}}{{#link}}See {{link}}{{/link}}"

	out, err := Render(tpl, Context{"link": ""})
	require.NoError(t, err)
	assert.Equal(t, "No link yet.", out)

	out, err = Render(tpl, Context{"link": "http://x"})
	require.NoError(t, err)
	assert.Equal(t, "See http://x", out)
}

func TestRender_InvertedSectionOnEmptyList(t *testing.T) {
	tpl := "{{^items}}nothing to list{{/items}}"

	out, err := Render(tpl, Context{"items": []string{}})
	require.NoError(t, err)
	assert.Equal(t, "nothing to list", out)

	out, err = Render(tpl, Context{"items": []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestRender_ListAtScalarPositionJoins(t *testing.T) {
	out, err := Render("We offer {{items}}", Context{"items": []string{"A", "B"}})
	require.NoError(t, err)
	assert.Equal(t, "We offer A, B", out)
}

func TestRender_CleanupCollapsesBlankLines(t *testing.T) {
	out, err := Render("top\n\n\n\nbottom", Context{})
	require.NoError(t, err)
	assert.Equal(t, "top\n\nbottom", out)
}

func TestRender_CleanupDeletesLeftoverTokens(t *testing.T) {
	out, err := Render("Hello {{.}} there {{weird-token}}", Context{})
	require.NoError(t, err)
	assert.Equal(t, "Hello  there", out)
}

func TestRender_TrimsEdges(t *testing.T) {
	out, err := Render("\n\n  Hi {{name}}  \n\n", Context{"name": "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ana", out)
}

func TestRender_NestedSectionRejected(t *testing.T) {
	_, err := Render("{{#a}}{{#b}}x{{/b}}{{/a}}", Context{"a": true, "b": true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestRender_UnclosedSectionRejected(t *testing.T) {
	_, err := Render("{{#a}}x", Context{"a": true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestRender_MismatchedCloseRejected(t *testing.T) {
	_, err := Render("{{#a}}x{{/b}}", Context{"a": true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestRender_StrayCloseRejected(t *testing.T) {
	_, err := Render("x{{/a}}", Context{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestValidate_AcceptsSequentialSections(t *testing.T) {
	assert.NoError(t, Validate("{{#a}}x{{/a}} {{^b}}y{{/b}} {{#a}}z{{/a}}"))
}

func TestRenderStrict_ReportsUnresolved(t *testing.T) {
	_, err := RenderStrict("Hi {{name}}, see {{link}}", Context{"name": "Ana"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{link}}")

	out, err := RenderStrict("Hi {{name}}", Context{"name": "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ana", out)
}

func TestRender_FullSkeleton(t *testing.T) {
	tpl := `Hi {{lead_name}},

Thanks for getting back to us about {{product_name}}.

{{#value_props}}- {{.}}
{{/value_props}}
{{#calendar_link}}Grab a slot here: {{calendar_link}}{{/calendar_link}}
{{^calendar_link}}Reply with a few times that work for you.{{/calendar_link}}

Best,
{{company_name}}`

	out, err := Render(tpl, Context{
		"lead_name":     "Jordan",
		"product_name":  "Riposte",
		"company_name":  "Acme",
		"value_props":   []string{"fast setup", "no code"},
		"calendar_link": "https://cal.example.com/acme",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Hi Jordan,")
	assert.Contains(t, out, "- fast setup\n- no code")
	assert.Contains(t, out, "Grab a slot here: https://cal.example.com/acme")
	assert.NotContains(t, out, "Reply with a few times")
	assert.NotContains(t, out, "{{")
}
