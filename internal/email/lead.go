package email

import (
	"html/template"
	"strings"
)

// Lead is a contact capture from the in-store advisor.
type Lead struct {
	Name      string
	Email     string
	Phone     string
	Consent   bool
	SKU       string
	Store     string
	Timestamp string
}

var leadTmpl = template.Must(template.New("lead").Parse(`
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
    <div style="background: linear-gradient(135deg, #F7E07D 0%, #D4BF4A 100%); padding: 20px; text-align: center;">
        <h1 style="color: #1A1A1A; margin: 0;">New Lead from Granny B's QR Advisor</h1>
        <p style="color: #1A1A1A; margin: 5px 0 0 0; opacity: 0.8;">at Leroy Merlin</p>
    </div>

    <div style="padding: 30px; background: #FFFDF5;">
        <h2 style="color: #1A1A1A; border-bottom: 2px solid #F7E07D; padding-bottom: 10px;">Contact Details</h2>
        <table style="width: 100%; border-collapse: collapse;">
            <tr>
                <td style="padding: 10px 0; font-weight: bold; width: 140px;">Name:</td>
                <td style="padding: 10px 0;">{{.Name}}</td>
            </tr>
            <tr>
                <td style="padding: 10px 0; font-weight: bold;">Email:</td>
                <td style="padding: 10px 0;"><a href="mailto:{{.Email}}">{{.Email}}</a></td>
            </tr>
            <tr>
                <td style="padding: 10px 0; font-weight: bold;">Phone:</td>
                <td style="padding: 10px 0;"><a href="tel:{{.Phone}}">{{.Phone}}</a></td>
            </tr>
            <tr>
                <td style="padding: 10px 0; font-weight: bold;">POPIA Consent:</td>
                <td style="padding: 10px 0;">{{if .Consent}}Yes{{else}}No{{end}}</td>
            </tr>
        </table>

        <h2 style="color: #1A1A1A; border-bottom: 2px solid #F7E07D; padding-bottom: 10px; margin-top: 30px;">Product &amp; Store</h2>
        <table style="width: 100%; border-collapse: collapse;">
            <tr>
                <td style="padding: 10px 0; font-weight: bold; width: 140px;">SKU:</td>
                <td style="padding: 10px 0;">{{.SKU}}</td>
            </tr>
            <tr>
                <td style="padding: 10px 0; font-weight: bold;">Store:</td>
                <td style="padding: 10px 0;">{{.Store}}</td>
            </tr>
        </table>

        <p style="color: #8C8577; font-size: 12px; margin-top: 30px; text-align: center;">
            Submitted via Granny B's Paint Advisor (QR Code)<br>
            {{.Timestamp}}
        </p>
    </div>
</body>
</html>
`))

// LeadHTML renders the internal lead-notification email body.
func LeadHTML(lead Lead) (string, error) {
	var sb strings.Builder
	if err := leadTmpl.Execute(&sb, lead); err != nil {
		return "", err
	}
	return sb.String(), nil
}
