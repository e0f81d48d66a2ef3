package otdoc

// WorkOrderRecord is the closed set of work-order fields the template knows
// how to place. Values arrive pre-resolved from the calling layer; a blank
// value renders as an empty cell, never an error.
type WorkOrderRecord struct {
	Folio             string `json:"folio"`
	Title             string `json:"title"`
	State             string `json:"state"`
	Category          string `json:"category"`
	Subcategory       string `json:"subcategory"`
	Priority          string `json:"priority"`
	MaintenanceType   string `json:"maintenanceType"`
	Zone              string `json:"zone"`
	Asset             string `json:"asset"`
	Site              string `json:"site"`
	Building          string `json:"building"`
	Floor             string `json:"floor"`
	Space             string `json:"space"`
	Technician        string `json:"technician"`
	TechnicianContact string `json:"technicianContact"`
	VisitDate         string `json:"visitDate"`
	RequestedDate     string `json:"requestedDate"`
	CompletedDate     string `json:"completedDate"`
	Requester         string `json:"requester"`
	RequesterContact  string `json:"requesterContact"`
	RequesterEmail    string `json:"requesterEmail"`
	Description       string `json:"description"`
	TechnicianNotes   string `json:"technicianNotes"`
	Materials         string `json:"materials"`
}

// Field is one (slot name, value) pair produced by Fields.
type Field struct {
	Slot  string
	Value string
}

// Fields returns the record as ordered (slot, value) pairs. Slot names match
// the template schema; the mapping is fixed at compile time so a record can
// never silently route a value to the wrong cell.
func (r WorkOrderRecord) Fields() []Field {
	return []Field{
		{"folio", r.Folio},
		{"title", r.Title},
		{"state", r.State},
		{"category", r.Category},
		{"subcategory", r.Subcategory},
		{"priority", r.Priority},
		{"maintenance_type", r.MaintenanceType},
		{"zone", r.Zone},
		{"asset", r.Asset},
		{"site", r.Site},
		{"building", r.Building},
		{"floor", r.Floor},
		{"space", r.Space},
		{"technician", r.Technician},
		{"technician_contact", r.TechnicianContact},
		{"visit_date", r.VisitDate},
		{"requested_date", r.RequestedDate},
		{"completed_date", r.CompletedDate},
		{"requester", r.Requester},
		{"requester_contact", r.RequesterContact},
		{"requester_email", r.RequesterEmail},
		{"description", r.Description},
		{"technician_notes", r.TechnicianNotes},
		{"materials", r.Materials},
	}
}

// Attachment is a named image payload supplied by the caller. The engine
// never fetches attachment bytes itself.
type Attachment struct {
	Filename string `json:"filename"`
	Data     []byte `json:"-"`
}

// SignatureData holds the two signature block entries. Either image may be
// nil; the corresponding name is still written.
type SignatureData struct {
	TechnicianName  string
	ClientName      string
	TechnicianImage []byte
	ClientImage     []byte
}
