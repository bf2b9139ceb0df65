package mobile

import (
	"embed"
	"html/template"
	"io"

	"github.com/harrylevesque/qrforge/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Field describes one input of a kind's form.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

var kindFields = map[models.Kind][]Field{
	models.KindText: {
		{Name: "text", Label: "Text", Type: "textarea", Required: true},
	},
	models.KindURL: {
		{Name: "url", Label: "URL", Type: "url", Required: true},
	},
	models.KindVCard: {
		{Name: "first_name", Label: "First name", Type: "text", Required: true},
		{Name: "last_name", Label: "Last name", Type: "text", Required: true},
		{Name: "address", Label: "Address", Type: "text"},
		{Name: "email", Label: "Email", Type: "email"},
		{Name: "phone", Label: "Phone", Type: "tel"},
	},
	models.KindEvent: {
		{Name: "title", Label: "Title", Type: "text", Required: true},
		{Name: "description", Label: "Description", Type: "textarea"},
		{Name: "start", Label: "Starts", Type: "datetime-local", Required: true},
		{Name: "end", Label: "Ends", Type: "datetime-local", Required: true},
		{Name: "url", Label: "URL", Type: "url"},
	},
	models.KindWifi: {
		{Name: "ssid", Label: "Network name (SSID)", Type: "text", Required: true},
		{Name: "password", Label: "Password", Type: "text"},
		{Name: "encryption", Label: "Encryption", Type: "select", Options: []string{
			models.EncryptionNone.String(), models.EncryptionWPA.String(), models.EncryptionWEP.String(),
		}},
		{Name: "hidden", Label: "Hidden network", Type: "checkbox"},
	},
	models.KindSms: {
		{Name: "phone_number", Label: "Phone number", Type: "tel", Required: true},
		{Name: "message", Label: "Message", Type: "textarea"},
	},
	models.KindEmail: {
		{Name: "to", Label: "To", Type: "email", Required: true},
		{Name: "subject", Label: "Subject", Type: "text"},
		{Name: "body", Label: "Body", Type: "textarea"},
	},
	models.KindPhone: {
		{Name: "phone_number", Label: "Phone number", Type: "tel", Required: true},
	},
}

// Fields returns the form inputs for k, nil for an unknown kind.
func Fields(k models.Kind) []Field {
	return kindFields[k]
}

// Page is the data rendered by the form template.
type Page struct {
	Kinds      []models.Kind
	Kind       models.Kind
	Fields     []Field
	Values     map[string]string
	Foreground string
	Background string

	// Prompt is the informational message shown instead of a code.
	Prompt string
	Error  string

	Image    template.URL
	Download string
	Payload  string
}

// Pages renders the mobile web form.
type Pages struct {
	tmpl *template.Template
}

// NewPages parses the embedded templates.
func NewPages() (*Pages, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Pages{tmpl: tmpl}, nil
}

// NewPage returns an empty form for k with the given default colors.
func NewPage(k models.Kind, fg, bg string) Page {
	return Page{
		Kinds:      models.Kinds,
		Kind:       k,
		Fields:     Fields(k),
		Values:     map[string]string{},
		Foreground: fg,
		Background: bg,
	}
}

// Render writes the form page.
func (p *Pages) Render(w io.Writer, page Page) error {
	return p.tmpl.ExecuteTemplate(w, "index.html", page)
}
