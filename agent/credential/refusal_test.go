package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRefusal(t *testing.T) {
	t.Parallel()

	refusals := []string{
		"I don't have it",
		"i dont have a phone",
		"I DO NOT HAVE that",
		"that doesn't match",
		"it doesnt match my records",
		"no, that's not it",
		"sorry, wrong number",
		"wrong zip, my bad",
		"I can't provide that",
		"I cannot provide it",
		"I’m unable to share it",
		"im unable to",
		"I am unable to do that",
	}
	for _, text := range refusals {
		assert.True(t, IsRefusal(text), text)
	}

	others := []string{
		"1234567890",
		"my zip is 98109",
		"what is the return policy?",
		"nothing itemized here",
		"I have it right here",
	}
	for _, text := range others {
		assert.False(t, IsRefusal(text), text)
	}
}
