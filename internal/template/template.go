// Package template implements the small conditional language reply skeletons
// are written in: {{key}} substitution, {{#key}}…{{/key}} truthy and list
// sections, {{^key}}…{{/key}} inverted sections. Unresolved placeholders are
// dropped, not left literal, so a sparse context still renders clean copy.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Context maps template variable names to string, number, bool, or ordered
// string-list values. Built fresh per synthesis call and never persisted.
type Context map[string]any

// ErrInvalidTemplate reports structural misuse: nested, unclosed, or
// mismatched sections. Render refuses such templates rather than
// mis-rendering them.
var ErrInvalidTemplate = errors.New("invalid template")

var (
	tagPattern     = regexp.MustCompile(`\{\{([#^/])([A-Za-z0-9_]+)\}\}`)
	openPattern    = regexp.MustCompile(`\{\{([#^])([A-Za-z0-9_]+)\}\}`)
	varPattern     = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)
	leftoverTokens = regexp.MustCompile(`\{\{[^{}]*\}\}`)
	blankLineRuns  = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
)

// Validate checks section structure. Sections must not nest and every open
// tag needs a matching close tag in order.
func Validate(tpl string) error {
	var open string
	haveOpen := false
	for _, m := range tagPattern.FindAllStringSubmatch(tpl, -1) {
		kind, key := m[1], m[2]
		switch kind {
		case "#", "^":
			if haveOpen {
				return fmt.Errorf("%w: section {{%s%s}} nested inside {{#%s}}", ErrInvalidTemplate, kind, key, open)
			}
			open, haveOpen = key, true
		case "/":
			if !haveOpen {
				return fmt.Errorf("%w: unexpected {{/%s}}", ErrInvalidTemplate, key)
			}
			if key != open {
				return fmt.Errorf("%w: {{/%s}} closes {{#%s}}", ErrInvalidTemplate, key, open)
			}
			haveOpen = false
		}
	}
	if haveOpen {
		return fmt.Errorf("%w: unclosed section {{#%s}}", ErrInvalidTemplate, open)
	}
	return nil
}

// Render fills a template from the context. Passes run in a fixed order,
// each over the previous pass's output: list sections, then truthy/falsy
// sections, then scalar substitution, then cleanup (leftover tokens deleted,
// blank-line runs collapsed, edges trimmed). The only error is a Validate
// failure; everything else degrades to dropping the unresolved construct.
func Render(tpl string, ctx Context) (string, error) {
	if err := Validate(tpl); err != nil {
		return "", err
	}
	out, _ := passes(tpl, ctx)
	return cleanup(out), nil
}

// RenderStrict renders like Render but reports unresolved variables instead
// of silently dropping them. Meant for template authoring, not the serving
// path.
func RenderStrict(tpl string, ctx Context) (string, error) {
	if err := Validate(tpl); err != nil {
		return "", err
	}
	out, _ := passes(tpl, ctx)
	if unresolved := leftoverTokens.FindAllString(out, -1); len(unresolved) > 0 {
		return "", fmt.Errorf("unresolved placeholders: %s", strings.Join(unresolved, ", "))
	}
	return cleanup(out), nil
}

// passes runs the list, conditional, and scalar passes. It returns the
// working context as well, which may have derived variables added.
func passes(tpl string, ctx Context) (string, Context) {
	work := make(Context, len(ctx)+2)
	for k, v := range ctx {
		work[k] = v
	}
	out := renderListSections(tpl, work)
	out = renderConditionalSections(out, work)
	out = substituteScalars(out, work)
	return out, work
}

// renderListSections expands {{#key}}…{{/key}} blocks whose key maps to a
// string list: one copy of the body per element, with {{.}} replaced by the
// element. A derived <key>_summary variable (first two elements joined with
// "and") is added to the context for later passes.
func renderListSections(text string, ctx Context) string {
	var b strings.Builder
	for {
		m := openPattern.FindStringSubmatchIndex(text)
		if m == nil {
			b.WriteString(text)
			break
		}
		kind := text[m[2]:m[3]]
		key := text[m[4]:m[5]]

		items, isList := ctx[key].([]string)
		if kind != "#" || !isList {
			// Not a list section; leave the tag for the next pass.
			b.WriteString(text[:m[1]])
			text = text[m[1]:]
			continue
		}

		closeTag := "{{/" + key + "}}"
		rest := text[m[1]:]
		closeIdx := strings.Index(rest, closeTag)
		if closeIdx < 0 {
			// Validate rules this out; bail rather than loop forever.
			b.WriteString(text)
			break
		}

		b.WriteString(text[:m[0]])
		body := rest[:closeIdx]
		for _, item := range items {
			b.WriteString(strings.ReplaceAll(body, "{{.}}", item))
		}
		if len(items) > 0 {
			ctx[key+"_summary"] = summarize(items)
		}
		text = rest[closeIdx+len(closeTag):]
	}
	return b.String()
}

// renderConditionalSections keeps or drops {{#key}} and {{^key}} blocks for
// scalar keys by truthiness: non-empty string, true, or non-zero number is
// truthy, and a list is truthy when non-empty.
func renderConditionalSections(text string, ctx Context) string {
	var b strings.Builder
	for {
		m := openPattern.FindStringSubmatchIndex(text)
		if m == nil {
			b.WriteString(text)
			break
		}
		kind := text[m[2]:m[3]]
		key := text[m[4]:m[5]]

		closeTag := "{{/" + key + "}}"
		rest := text[m[1]:]
		closeIdx := strings.Index(rest, closeTag)
		if closeIdx < 0 {
			b.WriteString(text)
			break
		}

		b.WriteString(text[:m[0]])
		keep := truthy(ctx[key])
		if kind == "^" {
			keep = !keep
		}
		if keep {
			b.WriteString(rest[:closeIdx])
		}
		text = rest[closeIdx+len(closeTag):]
	}
	return b.String()
}

// substituteScalars replaces {{key}} with the string form of the context
// value. Absent keys keep their tag so RenderStrict can report them; Render's
// cleanup deletes whatever remains.
func substituteScalars(text string, ctx Context) string {
	return varPattern.ReplaceAllStringFunc(text, func(tag string) string {
		key := tag[2 : len(tag)-2]
		v, ok := ctx[key]
		if !ok {
			return tag
		}
		return stringify(v)
	})
}

func cleanup(text string) string {
	text = leftoverTokens.ReplaceAllString(text, "")
	text = blankLineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// summarize joins the first two list elements into prose.
func summarize(items []string) string {
	if len(items) == 1 {
		return items[0]
	}
	return items[0] + " and " + items[1]
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case float32:
		return t != 0
	case []string:
		return len(t) > 0
	default:
		return true
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case []string:
		return strings.Join(t, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}
