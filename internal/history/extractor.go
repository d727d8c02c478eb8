package history

import (
	"regexp"
	"strings"
)

// rule binds a pattern to the fact key it populates. The first capture
// group is the fact value.
type rule struct {
	re  *regexp.Regexp
	key string
}

// rules is the ordered pattern list run over every inbound message.
// Order matters: more specific phrasings come before looser ones
// (e.g. 喜欢吃 before 喜欢).
var rules = []rule{
	{re: regexp.MustCompile(`我叫(.{1,10})`), key: "名字"},
	{re: regexp.MustCompile(`我的名字是(.{1,10})`), key: "名字"},
	{re: regexp.MustCompile(`我(\d{1,2})岁`), key: "年龄"},
	{re: regexp.MustCompile(`我的生日是(.{3,15})`), key: "生日"},
	{re: regexp.MustCompile(`我生日(.{3,15})`), key: "生日"},
	{re: regexp.MustCompile(`我在(.{2,10})工作`), key: "工作城市"},
	{re: regexp.MustCompile(`我住在(.{2,10})`), key: "居住地"},
	{re: regexp.MustCompile(`我是做(.{2,15})的`), key: "职业"},
	{re: regexp.MustCompile(`我喜欢吃(.{1,10})`), key: "喜欢的食物"},
	{re: regexp.MustCompile(`我喜欢(.{1,15})`), key: "喜好"},
	{re: regexp.MustCompile(`我养了(.{1,10})`), key: "宠物"},
}

// ExtractedFact is one key-value pair matched from an inbound message.
type ExtractedFact struct {
	Key   string
	Value string
}

// ExtractFacts runs the pattern list over input and returns every fact that
// fires, capture groups trimmed. Returns nil when nothing matches. A pure
// function: it cannot fail and touches no state.
func ExtractFacts(input string) []ExtractedFact {
	var facts []ExtractedFact
	for _, r := range rules {
		m := r.re.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		if value == "" {
			continue
		}
		facts = append(facts, ExtractedFact{Key: r.key, Value: value})
	}
	return facts
}
