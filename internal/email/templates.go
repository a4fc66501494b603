package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"donorops_backend/internal/leads/domain"
)

var digestTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2933;">
  <h2>Follow-ups due {{.Day}}</h2>
  <table cellpadding="6" cellspacing="0" border="0">
    <tr>
      <th align="left">Lead</th>
      <th align="left">Follow-up</th>
      <th align="left">Status</th>
      <th align="right">Priority</th>
    </tr>
    {{range .Leads}}
    <tr>
      <td>{{.Label}}</td>
      <td>{{.FollowUpDate}}{{if .Overdue}} (overdue){{end}}</td>
      <td>{{.Status}}</td>
      <td align="right">{{.Priority}}</td>
    </tr>
    {{end}}
  </table>
</body>
</html>`))

type digestRow struct {
	Label        string
	FollowUpDate string
	Overdue      bool
	Status       domain.Status
	Priority     int
}

type digestData struct {
	Day   string
	Leads []digestRow
}

func renderDigest(leads []domain.Lead, day time.Time) (string, error) {
	data := digestData{Day: day.Format("January 2, 2006")}
	for _, lead := range leads {
		label := lead.Organization
		if label == "" {
			label = lead.ContactName
		}
		days, ok := lead.DaysUntilFollowUp(day)
		data.Leads = append(data.Leads, digestRow{
			Label:        label,
			FollowUpDate: lead.FollowUpDate,
			Overdue:      ok && days < 0,
			Status:       lead.Status,
			Priority:     lead.Priority,
		})
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), nil
}
