package model

// CaseRecord represents a single appeal case: the denial being contested
// and the identifiers needed to retrieve supporting evidence for it.
type CaseRecord struct {
	ID             string   `json:"id" yaml:"id"`
	PayerName      string   `json:"payer_name" yaml:"payer_name"`             // Insurance payer (e.g., "Aetna")
	Category       string   `json:"category" yaml:"category"`                 // Service category (e.g., "physical therapy")
	ServiceCodes   []string `json:"service_codes,omitempty" yaml:"service_codes"`     // CPT/HCPCS procedure codes
	DiagnosisCodes []string `json:"diagnosis_codes,omitempty" yaml:"diagnosis_codes"` // ICD-10 diagnosis codes
	ReferenceID    string   `json:"reference_id,omitempty" yaml:"reference_id"`       // Payer claim/authorization reference
	MemberID       string   `json:"member_id,omitempty" yaml:"member_id"`
	PatientName    string   `json:"patient_name,omitempty" yaml:"patient_name"`
	ProviderName   string   `json:"provider_name,omitempty" yaml:"provider_name"`
	DenialReason   string   `json:"denial_reason,omitempty" yaml:"denial_reason"`
	OwnerKey       string   `json:"owner_key,omitempty" yaml:"owner_key"` // Scopes retrieval to this case owner's documents
}
