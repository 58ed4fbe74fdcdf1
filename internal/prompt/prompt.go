package prompt

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
	"time"
)

//go:embed system.txt
var System string

var systemTemplate = template.Must(template.New("system").Parse(System))

// Data is rendered into the system prompt at the start of each round.
type Data struct {
	Now    time.Time
	Root   string
	Memory string
}

// Render builds the system prompt.
func Render(data Data) (string, error) {
	now := data.Now
	if now.IsZero() {
		now = time.Now()
	}

	var buf bytes.Buffer
	err := systemTemplate.Execute(&buf, struct {
		Date     string
		Timezone string
		Root     string
		Memory   string
	}{
		Date:     now.Format(time.RFC3339),
		Timezone: now.Location().String(),
		Root:     data.Root,
		Memory:   strings.TrimSpace(data.Memory),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
