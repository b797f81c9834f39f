package knowledge

import "strings"

// DomainOther is the fallback bucket when no keyword matches.
const DomainOther = "other"

// domainKeywords maps title keywords to domain buckets. First match in
// table order wins; matching is case-insensitive substring.
var domainKeywords = []struct {
	keyword string
	domain  string
}{
	{"algorithm", "computer-science"},
	{"data structure", "computer-science"},
	{"complexity", "computer-science"},
	{"recursion", "computer-science"},
	{"database", "computer-science"},
	{"network", "computer-science"},
	{"compiler", "computer-science"},
	{"operating system", "computer-science"},
	{"calculus", "mathematics"},
	{"algebra", "mathematics"},
	{"geometry", "mathematics"},
	{"probability", "mathematics"},
	{"statistic", "mathematics"},
	{"theorem", "mathematics"},
	{"physics", "science"},
	{"chemistry", "science"},
	{"biology", "science"},
	{"quantum", "science"},
	{"thermodynamic", "science"},
	{"evolution", "science"},
	{"history", "humanities"},
	{"philosophy", "humanities"},
	{"economic", "humanities"},
	{"grammar", "language"},
	{"vocabulary", "language"},
	{"linguistic", "language"},
}

// InferDomain classifies a session. An explicitly supplied domain always
// wins; otherwise the title is matched against the keyword table.
func InferDomain(title, explicit string) string {
	if explicit != "" {
		return explicit
	}
	lower := strings.ToLower(title)
	for _, entry := range domainKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.domain
		}
	}
	return DomainOther
}
