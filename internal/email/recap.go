package email

import (
	"html/template"
	"sort"
	"strings"
)

// Recap is the structured project summary extracted from a chat
// transcript. Field names match the JSON schema the model is asked to
// return.
type Recap struct {
	ProjectType       string `json:"projectType"`
	SpecificPiece     string `json:"specificPiece"`
	Surface           string `json:"surface"`
	DreamLook         string `json:"dreamLook"`
	RecommendedColour string `json:"recommendedColour"`
	Sealer            string `json:"sealer"`
	PrepSteps         string `json:"prepSteps"`
	PaintSteps        string `json:"paintSteps"`
	SealSteps         string `json:"sealSteps"`
	LeroyProducts     string `json:"leroyProducts"`
}

// productLinks maps product keywords to their shop pages. When a
// keyword appears in a recap field, its first occurrence is turned
// into a link. Longer keywords are matched first so "Metallic Chalk
// Paint" is not swallowed by "Chalk Paint".
var productLinks = []struct {
	Keyword string
	URL     string
}{
	{"Metallic Chalk Paint", "https://grannyb.co.za/collections/metallic-chalk-paint"},
	{"Armour Sealer", "https://grannyb.co.za/products/armour-sealer"},
	{"Liquid Metal", "https://grannyb.co.za/collections/liquid-metal"},
	{"Classic Seal", "https://grannyb.co.za/products/classic-seal"},
	{"Chalk Paint", "https://grannyb.co.za/collections/chalkpaint"},
	{"Polka.Paint", "https://grannyb.co.za/collections/polka-paint"},
	{"Clear Wax", "https://grannyb.co.za/products/clear-wax"},
	{"Dark Wax", "https://grannyb.co.za/products/dark-wax"},
}

// linkProducts HTML-escapes s and substitutes the first occurrence of
// each known product keyword with a link to its shop page. Matches are
// resolved against the original text before any substitution, so a
// shorter keyword never links inside an anchor a longer one created.
func linkProducts(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	lower := strings.ToLower(escaped)

	type match struct {
		start, end int
		url        string
	}
	var matches []match
	for _, p := range productLinks {
		start := strings.Index(lower, strings.ToLower(p.Keyword))
		if start < 0 {
			continue
		}
		end := start + len(p.Keyword)
		overlaps := false
		for _, m := range matches {
			if start < m.end && end > m.start {
				overlaps = true
				break
			}
		}
		if !overlaps {
			matches = append(matches, match{start: start, end: end, url: p.URL})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	var sb strings.Builder
	prev := 0
	for _, m := range matches {
		sb.WriteString(escaped[prev:m.start])
		sb.WriteString(`<a href="` + m.url + `" style="color: #B8860B;">`)
		sb.WriteString(escaped[m.start:m.end])
		sb.WriteString(`</a>`)
		prev = m.end
	}
	sb.WriteString(escaped[prev:])
	return template.HTML(sb.String())
}

var recapTmpl = template.Must(template.New("recap").Funcs(template.FuncMap{
	"link": linkProducts,
}).Parse(`
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
    <div style="background: linear-gradient(135deg, #F7E07D 0%, #D4BF4A 100%); padding: 20px; text-align: center;">
        <h1 style="color: #1A1A1A; margin: 0;">Your Paint Project Recap</h1>
        <p style="color: #1A1A1A; margin: 5px 0 0 0; opacity: 0.8;">from Granny B's Paint Advisor</p>
    </div>

    <div style="padding: 30px; background: #FFFDF5;">
        <h2 style="color: #1A1A1A; border-bottom: 2px solid #F7E07D; padding-bottom: 10px;">Your Project</h2>
        <table style="width: 100%; border-collapse: collapse;">
            {{if .ProjectType}}<tr><td style="padding: 8px 0; font-weight: bold; width: 160px;">Project:</td><td style="padding: 8px 0;">{{link .ProjectType}}</td></tr>{{end}}
            {{if .SpecificPiece}}<tr><td style="padding: 8px 0; font-weight: bold;">Piece:</td><td style="padding: 8px 0;">{{link .SpecificPiece}}</td></tr>{{end}}
            {{if .Surface}}<tr><td style="padding: 8px 0; font-weight: bold;">Surface:</td><td style="padding: 8px 0;">{{link .Surface}}</td></tr>{{end}}
            {{if .DreamLook}}<tr><td style="padding: 8px 0; font-weight: bold;">The look:</td><td style="padding: 8px 0;">{{link .DreamLook}}</td></tr>{{end}}
            {{if .RecommendedColour}}<tr><td style="padding: 8px 0; font-weight: bold;">Colour:</td><td style="padding: 8px 0;">{{link .RecommendedColour}}</td></tr>{{end}}
            {{if .Sealer}}<tr><td style="padding: 8px 0; font-weight: bold;">Sealer:</td><td style="padding: 8px 0;">{{link .Sealer}}</td></tr>{{end}}
        </table>

        <h2 style="color: #1A1A1A; border-bottom: 2px solid #F7E07D; padding-bottom: 10px; margin-top: 30px;">Step by Step</h2>
        {{if .PrepSteps}}<p><strong>1. Prep:</strong> {{link .PrepSteps}}</p>{{end}}
        {{if .PaintSteps}}<p><strong>2. Paint:</strong> {{link .PaintSteps}}</p>{{end}}
        {{if .SealSteps}}<p><strong>3. Seal:</strong> {{link .SealSteps}}</p>{{end}}
        {{if .LeroyProducts}}<p><strong>From Leroy Merlin:</strong> {{link .LeroyProducts}}</p>{{end}}

        <p style="color: #8C8577; font-size: 12px; margin-top: 30px; text-align: center;">
            Sent by Granny B's Paint Advisor at Leroy Merlin<br>
            Shop the full range at <a href="https://grannyb.co.za" style="color: #B8860B;">grannyb.co.za</a>
        </p>
    </div>
</body>
</html>
`))

// RecapHTML renders the customer-facing recap email body.
func RecapHTML(recap Recap) (string, error) {
	var sb strings.Builder
	if err := recapTmpl.Execute(&sb, recap); err != nil {
		return "", err
	}
	return sb.String(), nil
}
