package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
)

var templates = template.Must(template.New("alert").Parse(`
Hello {{.Name}},

A water-quality alert was raised for your sensor.

Device: {{.Reading.DeviceID}}
pH: {{printf "%.1f" .Reading.PH}}
Turbidity: {{printf "%.1f" .Reading.Turbidity}} NTU
TDS: {{.Reading.TDS}} ppm
Location: {{.Reading.Latitude}}, {{.Reading.Longitude}}
Time: {{.Reading.Timestamp.Format "2006-01-02 15:04:05 MST"}}
{{if .Body}}
{{.Body}}
{{end}}
---
Water Quality Monitoring
`))

func init() {
	template.Must(templates.New("welcome").Parse(`
Hello {{.Name}},

An account has been created for you on the water-quality dashboard.

Username: {{.Name}}
Access ID: {{.AccessID}}

Configure your sensor with the access ID above to submit readings.

---
Water Quality Monitoring
`))
	template.Must(templates.New("account_deleted").Parse(`
Hello {{.Name}},

Your water-quality dashboard account and all of its readings have been deleted.

---
Water Quality Monitoring
`))
}

var defaultSubjects = map[repositories.NotificationKind]string{
	repositories.NotificationAlert:          "Water quality alert",
	repositories.NotificationWelcome:        "Your water-quality account",
	repositories.NotificationAccountDeleted: "Your account has been deleted",
}

// Render produces the subject and plain-text body of n
func Render(n repositories.Notification) (subject, body string, err error) {
	subject = n.Subject
	if subject == "" {
		subject = defaultSubjects[n.Kind]
	}

	t := templates.Lookup(string(n.Kind))
	if t == nil {
		return "", "", fmt.Errorf("unknown notification kind: %s", n.Kind)
	}
	if n.Kind == repositories.NotificationAlert && n.Reading == nil {
		n.Reading = &entities.Reading{}
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, n); err != nil {
		return "", "", fmt.Errorf("failed to render %s template: %w", n.Kind, err)
	}
	return subject, buf.String(), nil
}
