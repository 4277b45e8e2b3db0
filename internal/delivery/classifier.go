package delivery

import (
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// ProviderID names a storage/CDN provider.
type ProviderID string

// Unknown is the classification of a URL that matches no rule.
const Unknown ProviderID = ""

// Rule maps a URL pattern to a provider.
// Patterns containing a dot are matched against the URL host (exact or subdomain);
// any other pattern is matched as a substring of the whole URL.
type Rule struct {
	Provider ProviderID
	Match    string
}

// Classifier attributes URLs to providers using an ordered rule table.
type Classifier struct {
	rules []Rule
	known map[ProviderID]struct{}
}

// NewClassifier creates a classifier. The first matching rule wins.
func NewClassifier(rules []Rule) *Classifier {
	rules = lo.Filter(rules, func(r Rule, _ int) bool {
		return r.Provider != Unknown && r.Match != ""
	})

	known := make(map[ProviderID]struct{}, len(rules))
	for _, r := range rules {
		known[r.Provider] = struct{}{}
	}

	return &Classifier{
		rules: rules,
		known: known,
	}
}

// Classify returns the provider serving rawURL, or Unknown.
func (c *Classifier) Classify(rawURL string) ProviderID {
	lowered := strings.ToLower(rawURL)
	host := hostOf(lowered)

	for _, r := range c.rules {
		if r.matches(host, lowered) {
			return r.Provider
		}
	}
	return Unknown
}

// Known reports whether id appears in the rule table.
func (c *Classifier) Known(id ProviderID) bool {
	_, ok := c.known[id]
	return ok
}

// Providers returns the known providers in rule order.
func (c *Classifier) Providers() []ProviderID {
	return lo.Uniq(lo.Map(c.rules, func(r Rule, _ int) ProviderID {
		return r.Provider
	}))
}

func (r Rule) matches(host, lowered string) bool {
	pattern := strings.ToLower(r.Match)
	if strings.Contains(pattern, ".") && host != "" {
		return host == pattern || strings.HasSuffix(host, "."+pattern)
	}
	return strings.Contains(lowered, pattern)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
