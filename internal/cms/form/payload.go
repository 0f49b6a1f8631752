package form

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
)

// Payload reconstructs a form's complete current state as url.Values.
// The CMS treats any absent field as "clear this column", so a push must
// echo back everything the form holds and overlay only the intended
// changes on top.
//
// Field rules:
//   - hidden inputs always contribute name→value
//   - selects contribute the selected option, else the first option
//   - text inputs and textareas contribute their value / inner text
//   - checkboxes contribute only when checked; unchecked names are omitted
func Payload(form *goquery.Selection) url.Values {
	values := url.Values{}

	form.Find("input").Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		inputType, _ := input.Attr("type")
		value, _ := input.Attr("value")

		switch strings.ToLower(inputType) {
		case "hidden", "text", "", "date", "email", "tel", "number", "password":
			values.Set(name, value)
		case "checkbox", "radio":
			if _, checked := input.Attr("checked"); checked {
				values.Set(name, value)
			}
		}
	})

	form.Find("textarea").Each(func(_ int, area *goquery.Selection) {
		name, ok := area.Attr("name")
		if !ok || name == "" {
			return
		}
		values.Set(name, strings.TrimSpace(area.Text()))
	})

	form.Find("select").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok || name == "" {
			return
		}

		var value string
		sel.Find("option").EachWithBreak(func(i int, opt *goquery.Selection) bool {
			v, _ := opt.Attr("value")
			if i == 0 {
				value = v
			}
			if _, selected := opt.Attr("selected"); selected {
				value = v
				return false
			}
			return true
		})
		values.Set(name, value)
	})

	return values
}

// FromDocument locates a form by selector and builds its payload.
func FromDocument(doc *goquery.Document, selector string) (url.Values, error) {
	form := doc.Find(selector)
	if form.Length() == 0 {
		return nil, appErrors.Wrap(nil, appErrors.ErrParse.Code, appErrors.ErrParse.Status,
			"form "+selector+" not found")
	}
	return Payload(form.First()), nil
}

// Overlay applies overrides onto a preserved payload and returns it.
// A nil-valued override deletes the key, which is how delete-style
// suppression is expressed to the CMS.
func Overlay(payload url.Values, overrides map[string]*string) url.Values {
	for key, v := range overrides {
		if v == nil {
			payload.Del(key)
			continue
		}
		payload.Set(key, *v)
	}
	return payload
}

// Set returns a pointer override for Overlay.
func Set(v string) *string {
	return &v
}

// Remove returns the delete override for Overlay.
func Remove() *string {
	return nil
}

// NeedsTwoPassTerm reports whether this form is the student-semester
// edit, whose term code the CMS clears on the first submission and only
// accepts on the second. The orchestrator then posts once with an empty
// x_TermCode and once with the real value.
func NeedsTwoPassTerm(doc *goquery.Document) bool {
	return doc.Find("form#fr_stdsemesteredit").Length() > 0
}
