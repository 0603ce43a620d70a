package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pitstop-crm/pitstop-api/models"
)

// ErrServiceNotFound is returned when the service order does not exist
// within the caller's tenant
var ErrServiceNotFound = errors.New("service not found")

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.Number}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
tfoot td { font-weight: bold; }
.header { display: flex; justify-content: space-between; }
.muted { color: #777; font-size: 0.85rem; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<div class="header">
<div>
<h1>{{.Tenant.Name}}</h1>
<p class="muted">{{.Tenant.Address}}<br>{{.Tenant.Phone}} · {{.Tenant.Email}}</p>
</div>
<div>
<p><strong>Invoice {{.Number}}</strong><br>{{.IssuedAt.Format "2006-01-02"}}</p>
</div>
</div>
<p>
<strong>Customer:</strong> {{.Service.Customer.FirstName}} {{.Service.Customer.LastName}}<br>
<strong>Vehicle:</strong> {{.Service.Vehicle.Make}} {{.Service.Vehicle.Model}} ({{.Service.Vehicle.Plate}})
</p>
<p>{{.Service.Description}}</p>
<table>
<thead><tr><th>Item</th><th>Qty</th><th>Unit price</th><th>Amount</th></tr></thead>
<tbody>
{{range .Service.Parts}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{money .UnitPrice}}</td><td>{{money .Amount}}</td></tr>
{{end}}<tr><td>Labor</td><td></td><td></td><td>{{money .Service.LaborCost}}</td></tr>
</tbody>
<tfoot>
<tr><td colspan="3">Parts</td><td>{{money .Service.PartsCost}}</td></tr>
<tr><td colspan="3">Total</td><td>{{money .Service.TotalCost}}</td></tr>
</tfoot>
</table>
</body>
</html>
`))

// invoiceLine adapts a ServicePart for the template
type invoiceLine struct {
	Name      string
	Quantity  int
	UnitPrice float64
	Amount    float64
}

type invoiceService struct {
	Customer    *models.Customer
	Vehicle     *models.Vehicle
	Description string
	Parts       []invoiceLine
	LaborCost   float64
	PartsCost   float64
	TotalCost   float64
}

type invoiceData struct {
	Number   string
	IssuedAt time.Time
	Tenant   *models.Tenant
	Service  invoiceService
}

// RenderInvoice renders the HTML invoice for a service order. This is the
// print fallback the dashboard opens when no PDF is available.
func RenderInvoice(db *gorm.DB, tenantID uuid.UUID, serviceID uuid.UUID) (string, error) {
	var svc models.Service
	err := db.Preload("Customer").Preload("Vehicle").Preload("Parts").
		First(&svc, "id = ? AND tenant_id = ?", serviceID, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrServiceNotFound
		}
		logrus.WithError(err).WithField("service_id", serviceID).Error("invoice load failed")
		return "", err
	}

	var tenant models.Tenant
	if err := db.First(&tenant, "id = ?", tenantID).Error; err != nil {
		logrus.WithError(err).WithField("tenant_id", tenantID).Error("invoice tenant load failed")
		return "", err
	}

	lines := make([]invoiceLine, 0, len(svc.Parts))
	for _, p := range svc.Parts {
		lines = append(lines, invoiceLine{
			Name:      p.Name,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
			Amount:    float64(p.Quantity) * p.UnitPrice,
		})
	}

	data := invoiceData{
		Number:   fmt.Sprintf("INV-%s", svc.ID.String()[:8]),
		IssuedAt: time.Now(),
		Tenant:   &tenant,
		Service: invoiceService{
			Customer:    svc.Customer,
			Vehicle:     svc.Vehicle,
			Description: svc.Description,
			Parts:       lines,
			LaborCost:   svc.LaborCost,
			PartsCost:   svc.PartsCost,
			TotalCost:   svc.TotalCost,
		},
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render invoice: %w", err)
	}

	return buf.String(), nil
}
