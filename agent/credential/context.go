package credential

import (
	"strings"
)

const contextWordLimit = 4

type policyTopic struct {
	keywords []string
	phrase   string
}

// Checked in order; the first topic with a matching keyword wins.
var policyTopics = []policyTopic{
	{keywords: []string{"return", "returns"}, phrase: "return policy"},
	{keywords: []string{"refund", "refunds", "money back"}, phrase: "refund policy"},
	{keywords: []string{"shipping", "delivery", "ship"}, phrase: "shipping policy"},
	{keywords: []string{"fee", "fees"}, phrase: "seller fees"},
	{keywords: []string{"payment", "payments", "pay"}, phrase: "payment policy"},
	{keywords: []string{"prohibited", "restricted", "banned"}, phrase: "prohibited items policy"},
	{keywords: []string{"account", "password", "login"}, phrase: "account help"},
	{keywords: []string{"selling", "sell", "seller", "listing"}, phrase: "selling policy"},
	{keywords: []string{"buying", "buy", "buyer", "bid"}, phrase: "buying policy"},
}

// QueryContext summarizes a user's first utterance so it can be echoed back
// once authentication completes. A recognized policy keyword yields
// "<platform> <topic>", e.g. "ebay return policy"; anything else yields the
// first four words, with an ellipsis when the text was longer.
func QueryContext(text, platform string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	normalized := make([]string, 0, len(words))
	for _, w := range words {
		normalized = append(normalized, strings.ToLower(strings.Trim(w, ".,!?;:'\"()")))
	}
	joined := " " + strings.Join(normalized, " ") + " "

	for _, topic := range policyTopics {
		for _, kw := range topic.keywords {
			if strings.Contains(joined, " "+kw+" ") {
				return strings.TrimSpace(strings.ToLower(platform) + " " + topic.phrase)
			}
		}
	}

	if len(words) <= contextWordLimit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:contextWordLimit], " ") + "..."
}
