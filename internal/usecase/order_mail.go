package usecase

import (
	"bytes"
	"html/template"

	"storefront/internal/domain/model"
)

type mail struct {
	subject string
	tmpl    *template.Template
	data    any
}

func (m mail) render() (string, error) {
	var buf bytes.Buffer
	if err := m.tmpl.Execute(&buf, m.data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var orderCreatedTmpl = template.Must(template.New("order_created").Parse(`<h2>Thank you for your order</h2>
<p>Order <strong>{{.ID}}</strong> ({{.BatchID}}) has been received.</p>
<table>
{{range .Snapshot.Data.Lines}}<tr><td>{{.Title}}</td><td>{{.Quantity}}</td><td>{{.LineTotal.StringFixed 2}}</td></tr>
{{end}}</table>
<p>Total: <strong>{{.TotalAmount.StringFixed 2}}</strong></p>
<p>Status: {{.Status}}</p>`))

var orderStatusTmpl = template.Must(template.New("order_status").Parse(`<h2>Your order has been updated</h2>
<p>Order <strong>{{.Order.ID}}</strong> is now <strong>{{.Order.Status}}</strong>.</p>
{{if .Note}}<p>{{.Note}}</p>{{end}}`))

func orderCreatedMail(o model.Order) mail {
	return mail{subject: "Order confirmation " + o.BatchID, tmpl: orderCreatedTmpl, data: o}
}

func orderStatusMail(o model.Order, note string) mail {
	return mail{
		subject: "Order " + o.BatchID + " is " + string(o.Status),
		tmpl:    orderStatusTmpl,
		data: struct {
			Order model.Order
			Note  string
		}{o, note},
	}
}
