// Package classifier turns raw (app name, window title) pairs into activity
// labels: a domain for browsers, a file for editors, the app name otherwise.
package classifier

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	UnknownActivity = "Unknown"
	UnknownURL      = "Unknown URL"

	titleSeparator = " - "
)

type Kind int

const (
	Browser Kind = iota
	Editor
)

// Rule matches an application either by case-insensitive substring
// (Patterns) or by case-insensitive full name (Exact).
type Rule struct {
	Kind     Kind
	Label    string
	Patterns []string
	Exact    []string
}

func (r Rule) matches(appName string) bool {
	name := strings.ToLower(strings.TrimSpace(appName))
	for _, exact := range r.Exact {
		if name == strings.ToLower(exact) {
			return true
		}
	}
	for _, p := range r.Patterns {
		if strings.Contains(name, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// DefaultRules covers the browsers and editors most window managers report,
// both under their display names and their WM_CLASS / app_id.
var DefaultRules = []Rule{
	{Kind: Browser, Label: "Chrome", Patterns: []string{"google chrome", "google-chrome", "chromium"}},
	{Kind: Browser, Label: "Firefox", Patterns: []string{"firefox", "librewolf"}},
	{Kind: Browser, Label: "Brave", Patterns: []string{"brave"}},
	{Kind: Browser, Label: "Edge", Patterns: []string{"microsoft edge", "microsoft-edge"}},
	{Kind: Browser, Label: "Safari", Patterns: []string{"safari"}},
	{Kind: Editor, Label: "VSCode", Patterns: []string{"visual studio code", "code-oss", "vscodium"}, Exact: []string{"code"}},
	{Kind: Editor, Label: "Sublime", Patterns: []string{"sublime text", "sublime_text"}},
	{Kind: Editor, Label: "Zed", Exact: []string{"zed", "dev.zed.zed"}},
}

var urlPattern = regexp.MustCompile(`https?://\S*`)

type Classifier struct {
	rules []Rule
}

// New builds a classifier; with no rules DefaultRules are used
func New(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify derives the activity label for one window
func (c *Classifier) Classify(appName, title string) string {
	if title == "" {
		return UnknownActivity
	}

	for _, rule := range c.rules {
		if !rule.matches(appName) {
			continue
		}
		switch rule.Kind {
		case Browser:
			return browserActivity(rule.Label, title)
		case Editor:
			return editorActivity(rule.Label, title)
		}
	}

	return appName
}

func browserActivity(label, title string) string {
	if match := urlPattern.FindString(title); match != "" {
		return Domain(match)
	}
	// New Tab, Settings, ... : the browser name is usually the last segment
	parts := strings.Split(title, titleSeparator)
	return label + titleSeparator + parts[len(parts)-1]
}

func editorActivity(label, title string) string {
	file, _, _ := strings.Cut(title, titleSeparator)
	return label + titleSeparator + file
}

// Domain returns the host[:port] of rawURL, or UnknownURL when it can't be parsed
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return UnknownURL
	}
	return u.Host
}
