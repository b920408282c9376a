package chat

import (
	"fmt"

	"github.com/PabloGalante/lifeline/internal/domain"
)

// Helpline is a crisis line that at-risk replies must mention.
type Helpline struct {
	Name  string
	Phone string
	URL   string
}

// AASRA is the suicide prevention helpline for India included in every at-risk prompt.
var AASRA = Helpline{
	Name:  "AASRA",
	Phone: "91-9820466726",
	URL:   "http://www.aasra.info/",
}

const atRiskTemplate = `
The user has sent a message that may indicate suicidal thoughts: "%s"

Reply with compassion and support. Tell them about India's suicide prevention helpline and encourage them to reach out for help right away.

Important: include the %s suicide prevention helpline for India: %s, and mention that they can also visit %s for additional resources.

Keep the reply empathetic and non-judgmental, and focus on helping them find immediate support.
`

const neutralTemplate = `
The user has sent the following message: "%s"

Provide a helpful and supportive response.
`

// BuildPrompt composes the generator prompt for a message and its label.
func BuildPrompt(message string, label domain.Label) string {
	if label == domain.LabelAtRisk {
		return fmt.Sprintf(atRiskTemplate, message, AASRA.Name, AASRA.Phone, AASRA.URL)
	}
	return fmt.Sprintf(neutralTemplate, message)
}
