package safety

// AlertContentLimit caps how much of a flagged message is stored on a
// crisis alert. Detection always runs on the full text first.
const AlertContentLimit = 500

// Resource is a single crisis-support contact
type Resource struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Phone       string `json:"phone,omitempty"`
	URL         string `json:"url,omitempty"`
}

// SafetyResources is the payload returned to the caller when a message
// is flagged
type SafetyResources struct {
	Message   string     `json:"message"`
	Resources []Resource `json:"resources"`
}

var safetyResources = SafetyResources{
	Message: "I notice you may be going through a difficult time. Your safety matters. Please reach out to a crisis helpline if you need immediate support.",
	Resources: []Resource{
		{
			Name:        "International Association for Suicide Prevention",
			URL:         "https://www.iasp.info/resources/Crisis_Centres/",
			Description: "Find a crisis center in your country",
		},
		{
			Name:        "Crisis Text Line",
			Description: "Text HOME to 741741 (US)",
		},
		{
			Name:        "Samaritans (UK)",
			Phone:       "116 123",
			Description: "Free 24/7 support",
		},
		{
			Name:        "National Suicide Prevention Lifeline (US)",
			Phone:       "988",
			Description: "24/7 support",
		},
	},
}

// Resources returns the static safety-resources payload
func Resources() SafetyResources {
	out := safetyResources
	out.Resources = make([]Resource, len(safetyResources.Resources))
	copy(out.Resources, safetyResources.Resources)
	return out
}

// TruncateForAlert shortens flagged content to the storage limit
func TruncateForAlert(content string) string {
	runes := []rune(content)
	if len(runes) <= AlertContentLimit {
		return content
	}
	return string(runes[:AlertContentLimit])
}
