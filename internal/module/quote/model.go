package quote

import "encoding/json"

// Quote is a prepared offering record keyed by company-plus-offering
// name. The key spelling on the wire ("compNameOfferering") is the one
// clients already send; it is kept as-is. The rest of the record is a
// free-form JSON document authored externally.
type Quote struct {
	CompNameOffering string          `gorm:"primaryKey;column:comp_name_offering" json:"compNameOfferering"`
	Payload          json.RawMessage `gorm:"column:payload;type:jsonb" json:"-"`
}

// TableName returns the table name for Quote.
func (Quote) TableName() string {
	return "quotes"
}

// Record flattens the quote into a single JSON object: the payload
// document with the key field alongside it. This mirrors how the
// records were originally stored as one item.
func (q *Quote) Record() map[string]any {
	record := make(map[string]any)
	if len(q.Payload) > 0 {
		// A payload that fails to parse still yields the key field.
		_ = json.Unmarshal(q.Payload, &record)
	}
	record["compNameOfferering"] = q.CompNameOffering
	return record
}
