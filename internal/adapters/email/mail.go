package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	textTemplate "text/template"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<p>Dag {{.FirstName}},</p>
<p>Je account voor het leidingsdashboard van KSA Petegem is aangemaakt.</p>
<p>Een beheerder moet je nog toegang geven voor je iets kan bekijken of aanpassen.
Je krijgt geen aparte mail wanneer dat gebeurd is; probeer gewoon opnieuw in te loggen op
<a href="{{.LoginURL}}">{{.LoginURL}}</a>.</p>
<p>Stevig,<br>De hoofdleiding</p>`))

var welcomeText = textTemplate.Must(textTemplate.New("welcome").Parse(`Dag {{.FirstName}},

Je account voor het leidingsdashboard van KSA Petegem is aangemaakt.
Een beheerder moet je nog toegang geven voor je iets kan bekijken of aanpassen.
Probeer daarna opnieuw in te loggen op {{.LoginURL}}

Stevig,
De hoofdleiding
`))

var signupNoticeTmpl = template.Must(template.New("signup").Parse(`<p>{{.FirstName}} {{.LastName}} ({{.Email}}) heeft een account aangemaakt.</p>
<p>Ken rechten toe via <a href="{{.AccountsURL}}">{{.AccountsURL}}</a>.</p>`))

// Signup describes a freshly created account.
type Signup struct {
	Email     string
	FirstName string
	LastName  string
}

// WelcomeMail builds the mail sent to a new account.
// PRE: s.Email is set; baseURL is the public dashboard root
func WelcomeMail(s Signup, baseURL string) (SendRequest, error) {
	var body bytes.Buffer
	data := struct {
		FirstName string
		LoginURL  string
	}{s.FirstName, strings.TrimRight(baseURL, "/") + "/login"}
	if err := welcomeTmpl.Execute(&body, data); err != nil {
		return SendRequest{}, fmt.Errorf("render welcome mail: %w", err)
	}
	var text bytes.Buffer
	if err := welcomeText.Execute(&text, data); err != nil {
		return SendRequest{}, fmt.Errorf("render welcome mail: %w", err)
	}
	return SendRequest{
		To:      []string{s.Email},
		Subject: "Welkom op het leidingsdashboard",
		Kind:    "welcome",
		HTML:    body.String(),
		Text:    text.String(),
	}, nil
}

// SignupNotice builds the mail telling one administrator about a new account.
func SignupNotice(admin string, s Signup, baseURL string) (SendRequest, error) {
	var body bytes.Buffer
	data := struct {
		Signup
		AccountsURL string
	}{s, strings.TrimRight(baseURL, "/") + "/accounts"}
	if err := signupNoticeTmpl.Execute(&body, data); err != nil {
		return SendRequest{}, fmt.Errorf("render signup notice: %w", err)
	}
	return SendRequest{
		To:      []string{admin},
		Subject: "Nieuw account: " + strings.TrimSpace(s.FirstName+" "+s.LastName),
		HTML:    body.String(),
		ReplyTo: s.Email,
		Kind:    "signup_notice",
	}, nil
}
