package cors

import "strings"

// OriginRule is one entry of ALLOWED_ORIGINS: "*", an exact origin, or a
// pattern with a single wildcard such as "https://*.example.com".
type OriginRule struct {
	AllowAll bool
	Prefix   string
	Suffix   string
	Exact    string
}

func ParseOriginRules(env string) []OriginRule {
	if env == "" {
		return nil
	}
	var rules []OriginRule
	for _, o := range strings.Split(env, ",") {
		if o = strings.TrimSpace(o); o == "" {
			continue
		}
		switch {
		case o == "*":
			rules = append(rules, OriginRule{AllowAll: true})
		case strings.Contains(o, "*"):
			prefix, suffix, _ := strings.Cut(o, "*")
			rules = append(rules, OriginRule{Prefix: prefix, Suffix: suffix})
		default:
			rules = append(rules, OriginRule{Exact: o})
		}
	}
	return rules
}

func (r OriginRule) Match(origin string) bool {
	switch {
	case r.AllowAll:
		return true
	case r.Exact != "":
		return origin == r.Exact
	case r.Prefix != "" || r.Suffix != "":
		return len(origin) >= len(r.Prefix)+len(r.Suffix) &&
			strings.HasPrefix(origin, r.Prefix) && strings.HasSuffix(origin, r.Suffix)
	}
	return false
}

func (r OriginRule) String() string {
	switch {
	case r.AllowAll:
		return "*"
	case r.Exact != "":
		return r.Exact
	}
	return r.Prefix + "*" + r.Suffix
}

func NewOriginValidator(rules []OriginRule) func(string) bool {
	return func(origin string) bool {
		for _, rule := range rules {
			if rule.Match(origin) {
				return true
			}
		}
		return false
	}
}
