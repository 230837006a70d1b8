package model

import (
	"encoding/json"
	"time"
)

// DateLayout is the wire format of report dates.
const DateLayout = "2006-01-02"

// DefaultReportStatus is applied when a report payload omits its status.
const DefaultReportStatus = "compliant"

// WastewaterReport is a compliance report submitted by a vendor on a given
// date.  It owns its Items exclusively: items are created, replaced and
// deleted together with the report.
//
// Fields:
//  ID         – primary key identifier.
//  ReportDate – calendar date of the report (time component is zero, UTC).
//  Vendor     – submitting vendor.
//  Status     – open label such as "compliant" or "under review".
//  Items      – measured items, ordered by id.
type WastewaterReport struct {
	ID         uint64                 `json:"id"`
	ReportDate time.Time              `json:"-"`
	Vendor     string                 `json:"vendor"`
	Status     string                 `json:"status"`
	Items      []WastewaterReportItem `json:"items"`
}

// MarshalJSON renders ReportDate as a plain YYYY-MM-DD date.
func (r WastewaterReport) MarshalJSON() ([]byte, error) {
	type alias WastewaterReport
	items := r.Items
	if items == nil {
		items = []WastewaterReportItem{}
	}
	a := alias(r)
	a.Items = items
	return json.Marshal(struct {
		alias
		ReportDate string `json:"report_date"`
	}{a, r.ReportDate.Format(DateLayout)})
}

// WastewaterReportItem is one measured compliance item of a report.
type WastewaterReportItem struct {
	ID          uint64  `json:"id"`           // wastewater_report_items.id
	ReportID    uint64  `json:"-"`            // wastewater_report_items.report_id
	ItemName    string  `json:"item_name"`    // wastewater_report_items.item_name
	Value       float64 `json:"value"`        // wastewater_report_items.value
	Unit        *string `json:"unit"`         // nullable
	Standard    *string `json:"standard"`     // nullable regulatory threshold text
	IsCompliant bool    `json:"is_compliant"` // defaults to true
}
