package graph

import (
	"fmt"
	"strings"
)

// ConsistencyChecker evaluates narrative text against known entities and
// reports advisory findings. Implementations are expected to be heuristic;
// a model-based checker can be swapped in without touching callers.
type ConsistencyChecker interface {
	Check(entities []Entity, text string) []Issue
}

// oppositePairs are trait keywords considered mutually exclusive. Matching
// is symmetric: either side recorded on the entity conflicts with the other
// side appearing near a mention.
var oppositePairs = [][2]string{
	{"gentle", "violent"},
	{"brave", "cowardly"},
	{"honest", "deceitful"},
	{"kind", "cruel"},
	{"calm", "furious"},
	{"温柔", "暴躁"},
	{"勇敢", "胆小"},
	{"诚实", "狡诈"},
}

// KeywordChecker flags entity mentions whose surrounding text contains the
// opposite of a recorded trait keyword. Mostly false negatives in practice;
// findings feed a warning path, never a hard gate.
type KeywordChecker struct{}

// NewKeywordChecker creates the keyword-pair checker.
func NewKeywordChecker() *KeywordChecker {
	return &KeywordChecker{}
}

// Check scans each mentioned entity's string attributes against the text
// around its mentions.
func (c *KeywordChecker) Check(entities []Entity, text string) []Issue {
	textRunes := []rune(text)

	var issues []Issue
	for _, e := range entities {
		for _, pos := range runeOccurrences(textRunes, []rune(e.Name)) {
			snippet := snippetAround(textRunes, pos, len([]rune(e.Name)))
			issues = append(issues, c.checkSnippet(e, snippet)...)
		}
	}
	return issues
}

func (c *KeywordChecker) checkSnippet(e Entity, snippet string) []Issue {
	var issues []Issue
	for attr, value := range e.Attributes {
		str, ok := value.(string)
		if !ok {
			continue
		}
		for _, pair := range oppositePairs {
			for _, ordered := range [][2]string{pair, {pair[1], pair[0]}} {
				if strings.Contains(str, ordered[0]) && strings.Contains(snippet, ordered[1]) {
					issues = append(issues, Issue{
						EntityID:   e.ID,
						EntityName: e.Name,
						Attribute:  attr,
						Expected:   ordered[0],
						Found:      ordered[1],
						Snippet:    snippet,
					})
				}
			}
		}
	}
	return issues
}

// String renders an issue for log output.
func (i Issue) String() string {
	return fmt.Sprintf("%s (%s): attribute %q says %q but text nearby says %q",
		i.EntityName, i.EntityID, i.Attribute, i.Expected, i.Found)
}

var _ ConsistencyChecker = (*KeywordChecker)(nil)
