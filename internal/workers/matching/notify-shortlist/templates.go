// internal/workers/matching/notify-shortlist/templates.go
package notifyshortlist

import (
	"bytes"
	htmltemplate "html/template"
	"math"
	"strings"
	texttemplate "text/template"

	"pawmatch-workers/internal/matching"
)

const textBody = `Hi {{.Greeting}},

We found {{len .Matches}} {{if eq (len .Matches) 1}}pet{{else}}pets{{end}} that could be a great fit for you:
{{range .Matches}}
{{.Rank}}. {{.Name}}{{if .Species}} ({{.Species}}){{end}} - {{.Percent}}% match, {{.Tier}}
   {{.Explanation}}{{if .Shelter}}
   Waiting at {{.Shelter}}{{end}}
{{end}}
Reply to this e-mail or visit your shelter to meet them.
`

const htmlBody = `<html><body>
<p>Hi {{.Greeting}},</p>
<p>We found {{len .Matches}} {{if eq (len .Matches) 1}}pet{{else}}pets{{end}} that could be a great fit for you:</p>
<ol>{{range .Matches}}
<li><strong>{{.Name}}</strong>{{if .Species}} ({{.Species}}){{end}} &middot; {{.Percent}}% match, {{.Tier}}<br>{{.Explanation}}{{if .Shelter}}<br><em>Waiting at {{.Shelter}}</em>{{end}}</li>{{end}}
</ol>
</body></html>
`

var (
	textTmpl = texttemplate.Must(texttemplate.New("shortlist.txt").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("shortlist.html").Parse(htmlBody))
)

type shortlistView struct {
	Greeting string
	Matches  []matchView
}

type matchView struct {
	Rank        int
	Name        string
	Species     string
	Percent     int
	Tier        string
	Explanation string
	Shelter     string
}

func newShortlistView(profile matching.AdopterProfile, matches []matching.Match) shortlistView {
	greeting := profile.FirstName
	if greeting == "" {
		greeting = "there"
	}

	views := make([]matchView, len(matches))
	for i, m := range matches {
		rank := m.Rank
		if rank == 0 {
			rank = i + 1
		}
		tier, _ := matching.TierFor(m.Scores.Overall)
		views[i] = matchView{
			Rank:        rank,
			Name:        m.Candidate.DisplayName(),
			Species:     strings.ReplaceAll(string(m.Candidate.Species), "_", " "),
			Percent:     int(math.Round(m.Scores.Overall * 100)),
			Tier:        tier,
			Explanation: m.Explanation,
			Shelter:     m.Candidate.Shelter.Name,
		}
	}
	return shortlistView{Greeting: greeting, Matches: views}
}

// renderEmail renders the plain text and HTML bodies. HTML escaping of names
// and explanations is left to html/template.
func renderEmail(view shortlistView) (string, string, error) {
	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, view); err != nil {
		return "", "", err
	}
	if err := htmlTmpl.Execute(&html, view); err != nil {
		return "", "", err
	}
	return text.String(), html.String(), nil
}
