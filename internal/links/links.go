// Package links turns URLs, e-mail addresses and phone numbers in model output
// into clickable HTML anchors.
package links

import (
	"fmt"
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"
)

var (
	wellFormedAnchorRe = regexp.MustCompile(`(?is)<a\s[^>]*href\s*=\s*["'][^"']+["'][^>]*>.*?</a>`)
	anchorRe           = regexp.MustCompile(`(?is)<a\s[^>]*>.*?</a>`)
	markdownRe         = regexp.MustCompile(`\[([^\[\]]+)\]\((https?://[^\s()]+)\)`)
	urlRe              = mustScheme(`https?://`)
	emailRe            = xurls.Relaxed()
	emailGroup         = emailRe.SubexpIndex("relaxedEmail")
	// A bare digit run is not a phone: the area code must be parenthesised or
	// followed by a separator, or the last four digits must be set apart.
	phoneRe = regexp.MustCompile(`(?:\+?55[\s.-]?)?(?:\(\d{2}\)[\s.-]?9?\d{4}[\s.-]?\d{4}|\d{2}[\s.-]9?\d{4}[\s.-]?\d{4}|\d{2}9?\d{4}[\s.-]\d{4})`)
)

func mustScheme(scheme string) *regexp.Regexp {
	re, err := xurls.StrictMatchingScheme(scheme)
	if err != nil {
		panic(err)
	}
	return re
}

// WhatsAppBaseURL prefixes the digits of a phone number to build a chat link.
const WhatsAppBaseURL = "https://wa.me/"

// Normalize rewrites text so every link is an anchor tag. Text that already
// contains a well-formed anchor is returned unchanged. Otherwise markdown links,
// bare URLs, e-mail addresses and phone numbers are converted in that order, each
// step leaving anchors from the earlier steps untouched.
func Normalize(text string) string {
	if wellFormedAnchorRe.MatchString(text) {
		return text
	}
	text = markdownRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := markdownRe.FindStringSubmatch(m)
		return anchor(sub[2], sub[1])
	})
	text = outsideAnchors(text, linkURLs)
	text = outsideAnchors(text, linkEmails)
	text = outsideAnchors(text, linkPhones)
	return text
}

func anchor(href, label string) string {
	return fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, href, label)
}

// outsideAnchors applies fn to the parts of s that are not inside an anchor element.
func outsideAnchors(s string, fn func(string) string) string {
	locs := anchorRe.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return fn(s)
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(fn(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(fn(s[last:]))
	return b.String()
}

// linkURLs anchors bare http(s) URLs. Trailing sentence punctuation and
// unbalanced closing brackets are left outside the match by xurls.
func linkURLs(s string) string {
	return urlRe.ReplaceAllStringFunc(s, func(url string) string {
		return anchor(url, url)
	})
}

// linkEmails anchors the e-mail matches of the relaxed xurls expression and
// leaves its scheme-less host matches as plain text.
func linkEmails(s string) string {
	locs := emailRe.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start, end := loc[2*emailGroup], loc[2*emailGroup+1]
		if start < 0 {
			continue
		}
		email := s[start:end]
		b.WriteString(s[last:start])
		fmt.Fprintf(&b, `<a href="mailto:%s">%s</a>`, email, email)
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

func linkPhones(s string) string {
	locs := phoneRe.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		// part of a longer number, e.g. an order or document id
		if (start > 0 && isDigit(s[start-1])) || (end < len(s) && isDigit(s[end])) {
			continue
		}
		phone := s[start:end]
		b.WriteString(s[last:start])
		b.WriteString(anchor(WhatsAppBaseURL+whatsAppDigits(phone), phone))
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

func whatsAppDigits(phone string) string {
	var b strings.Builder
	for i := 0; i < len(phone); i++ {
		if isDigit(phone[i]) {
			b.WriteByte(phone[i])
		}
	}
	digits := b.String()
	if len(digits) <= 11 {
		digits = "55" + digits
	}
	return digits
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
