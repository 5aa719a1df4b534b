package notify

import (
	"bytes"
	"fmt"
	"text/template"
)

type message struct {
	subject *template.Template
	body    *template.Template
}

func mustMessage(name, subject, body string) message {
	return message{
		subject: template.Must(template.New(name + "_subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New(name + "_body").Option("missingkey=zero").Parse(body)),
	}
}

var messages = map[Template]message{
	TemplateRequestCreated: mustMessage("request_created",
		"New mentorship request #{{.request_id}}",
		"Hi {{.name}},\n\nA trainee sent you a {{.type}} request for service #{{.service_id}}. Accept or reject it from your dashboard.\n"),
	TemplateRequestAccepted: mustMessage("request_accepted",
		"Your mentorship request #{{.request_id}} was accepted",
		"Hi {{.name}},\n\nYour coach accepted the request. {{if .payment_due_at}}Complete the payment before {{.payment_due_at}} to keep your booking.{{else}}You can now schedule your sessions.{{end}}\n"),
	TemplateRequestRejected: mustMessage("request_rejected",
		"Your mentorship request #{{.request_id}} was rejected",
		"Hi {{.name}},\n\nYour coach could not take this request. Any held sessions were released.\n"),
	TemplateRequestCancelled: mustMessage("request_cancelled",
		"Mentorship request #{{.request_id}} was cancelled",
		"Hi {{.name}},\n\nThe request was cancelled{{if .reason}} ({{.reason}}){{end}}. Any held sessions were released.\n"),
	TemplatePlanBooked: mustMessage("plan_booked",
		"Your plan sessions are on hold",
		"Hi {{.name}},\n\n{{.session_count}} sessions starting {{.first_session}} are held for you until {{.payment_due_at}}.\n"),
	TemplatePaymentConfirmed: mustMessage("payment_confirmed",
		"Payment received for request #{{.request_id}}",
		"Hi {{.name}},\n\nPayment of {{.amount}} was received and your sessions are scheduled.\n"),
}

// Render returns subject and body for the template. The recipient name is exposed to
// the template as "name" unless the payload sets it.
func Render(tmpl Template, to Recipient, payload map[string]any) (string, string, error) {
	msg, ok := messages[tmpl]
	if !ok {
		return "", "", fmt.Errorf("unknown notification template %q", tmpl)
	}

	data := make(map[string]any, len(payload)+1)
	data["name"] = to.Name
	for k, v := range payload {
		data[k] = v
	}

	var subject, body bytes.Buffer
	if err := msg.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", tmpl, err)
	}
	if err := msg.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", tmpl, err)
	}
	return subject.String(), body.String(), nil
}
