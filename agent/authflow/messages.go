package authflow

import "fmt"

const (
	msgAskZip          = "Thank you. Please provide your 5-digit zip code to complete authentication."
	msgAskPhone        = "Thank you. Please provide your 10-digit phone number to complete authentication."
	msgInvalidPhone    = "That doesn't look like a valid phone number. Please provide your 10-digit phone number."
	msgInvalidZip      = "That doesn't look like a valid zip code. Please provide your 5-digit zip code."
	msgIdlePhone       = "Please provide your phone number for authentication."
	msgRefused         = "Authentication failed. I will respond as a guest."
	msgMismatch        = "Authentication failed. Please provide your phone number and zip code."
	msgGrantedTemplate = "Authentication successful. You can now ask %s-related questions."
)

func grantedMessage(platform, initialContext string) string {
	msg := fmt.Sprintf(msgGrantedTemplate, platform)
	if initialContext != "" {
		msg += fmt.Sprintf(" Earlier you asked about %q; go ahead and ask again.", initialContext)
	}
	return msg
}

func firstTurnMessage(initialContext string) string {
	if initialContext == "" {
		return "Before we start, please provide your 10-digit phone number for authentication."
	}
	return fmt.Sprintf("I can help with %q. Before we start, please provide your 10-digit phone number for authentication.", initialContext)
}
