package entities

// StoreName identifies one of the procedure reference tables
type StoreName string

const (
	StoreGeneral                 StoreName = "general"
	StoreEmergency               StoreName = "emergency"
	StoreEndoscopic              StoreName = "endoscopic"
	StoreInterventionalRadiology StoreName = "interventional-radiology"
	StoreSurgical                StoreName = "surgical"
)

// StoreNames lists every procedure store in display order
var StoreNames = []StoreName{
	StoreGeneral,
	StoreEmergency,
	StoreEndoscopic,
	StoreInterventionalRadiology,
	StoreSurgical,
}

// Category classifies what a procedure is for
type Category string

const (
	CategoryDiagnostic  Category = "diagnostic"
	CategoryTherapeutic Category = "therapeutic"
	CategorySurgical    Category = "surgical"
	CategoryScreening   Category = "screening"
	CategoryPreventive  Category = "preventive"
)

// Complexity grades how involved a procedure is
type Complexity string

const (
	ComplexityMinimal  Complexity = "minimal"
	ComplexityLow      Complexity = "low"
	ComplexityModerate Complexity = "moderate"
	ComplexityHigh     Complexity = "high"
	ComplexityVeryHigh Complexity = "very-high"
)

// Anesthesia is a type of anesthesia a procedure may use
type Anesthesia string

const (
	AnesthesiaNone     Anesthesia = "none"
	AnesthesiaLocal    Anesthesia = "local"
	AnesthesiaTopical  Anesthesia = "topical"
	AnesthesiaRegional Anesthesia = "regional"
	AnesthesiaSedation Anesthesia = "sedation"
	AnesthesiaGeneral  Anesthesia = "general"
	AnesthesiaSpinal   Anesthesia = "spinal"
	AnesthesiaEpidural Anesthesia = "epidural"
)

// Setting is a care setting where a procedure is performed
type Setting string

const (
	SettingOutpatientClinic        Setting = "outpatient-clinic"
	SettingOutpatientSurgeryCenter Setting = "outpatient-surgery-center"
	SettingHospitalOutpatient      Setting = "hospital-outpatient"
	SettingHospitalInpatient       Setting = "hospital-inpatient"
	SettingEmergencyDepartment     Setting = "emergency-department"
	SettingOperatingRoom           Setting = "operating-room"
	SettingCardiacCathLab          Setting = "cardiac-cath-lab"
	SettingInterventionalRadiology Setting = "interventional-radiology"
	SettingEndoscopySuite          Setting = "endoscopy-suite"
	SettingBedside                 Setting = "bedside"
	SettingLaboratory              Setting = "laboratory"
	SettingImagingCenter           Setting = "imaging-center"
	SettingHome                    Setting = "home"
)

// Coding holds billing identifiers. Values are opaque and never checked
// against a code registry.
type Coding struct {
	ICD10PCS string   `json:"icd10pcs,omitempty"`
	CPT      []string `json:"cpt,omitempty"`
}

// ProcedureEntry is one row of a procedure reference table.
// Entries are loaded once and shared by every caller; treat them as read-only.
type ProcedureEntry struct {
	ProcedureID string        `json:"procedureId" validate:"required"`
	Name        LocalizedText `json:"name"`
	Category    Category      `json:"category" validate:"required,oneof=diagnostic therapeutic surgical screening preventive"`
	Complexity  Complexity    `json:"complexity" validate:"required,oneof=minimal low moderate high very-high"`
	Specialties []string      `json:"specialties" validate:"min=1,dive,required"`
	BodyRegions []string      `json:"bodyRegions" validate:"dive,required"`
	Settings    []Setting     `json:"settings" validate:"dive,oneof=outpatient-clinic outpatient-surgery-center hospital-outpatient hospital-inpatient emergency-department operating-room cardiac-cath-lab interventional-radiology endoscopy-suite bedside laboratory imaging-center home"`
	Anesthesia  []Anesthesia  `json:"anesthesia" validate:"dive,oneof=none local topical regional sedation general spinal epidural"`
	Coding      *Coding       `json:"coding,omitempty"`

	Description        LocalizedText   `json:"description"`
	Indications        []LocalizedText `json:"indications,omitempty"`
	WhatToExpect       LocalizedText   `json:"whatToExpect"`
	PatientExplanation LocalizedText   `json:"patientExplanation"`
	Preparation        LocalizedText   `json:"preparation"`
	PreProcedure       LocalizedText   `json:"preProcedure"`
	Steps              LocalizedText   `json:"steps"`
	PostProcedure      LocalizedText   `json:"postProcedure"`
	Complications      []LocalizedText `json:"complications,omitempty"`
	Contraindications  []LocalizedText `json:"contraindications,omitempty"`
	Alternatives       []LocalizedText `json:"alternatives,omitempty"`
	Recovery           LocalizedText   `json:"recovery"`
}

// LocalizedProcedure is a single-language view of a ProcedureEntry
type LocalizedProcedure struct {
	ProcedureID        string       `json:"procedureId"`
	Locale             Locale       `json:"locale"`
	Name               string       `json:"name"`
	Category           Category     `json:"category"`
	Complexity         Complexity   `json:"complexity"`
	Specialties        []string     `json:"specialties"`
	BodyRegions        []string     `json:"bodyRegions"`
	Settings           []Setting    `json:"settings"`
	Anesthesia         []Anesthesia `json:"anesthesia"`
	Coding             *Coding      `json:"coding,omitempty"`
	Description        string       `json:"description"`
	Indications        []string     `json:"indications,omitempty"`
	WhatToExpect       string       `json:"whatToExpect"`
	PatientExplanation string       `json:"patientExplanation"`
	Preparation        string       `json:"preparation,omitempty"`
	PreProcedure       string       `json:"preProcedure,omitempty"`
	Steps              string       `json:"steps,omitempty"`
	PostProcedure      string       `json:"postProcedure,omitempty"`
	Complications      []string     `json:"complications,omitempty"`
	Contraindications  []string     `json:"contraindications,omitempty"`
	Alternatives       []string     `json:"alternatives,omitempty"`
	Recovery           string       `json:"recovery,omitempty"`
}

// Localize flattens the entry into the requested language
func (p *ProcedureEntry) Localize(locale Locale) *LocalizedProcedure {
	if p == nil {
		return nil
	}
	return &LocalizedProcedure{
		ProcedureID:        p.ProcedureID,
		Locale:             locale,
		Name:               p.Name.In(locale),
		Category:           p.Category,
		Complexity:         p.Complexity,
		Specialties:        p.Specialties,
		BodyRegions:        p.BodyRegions,
		Settings:           p.Settings,
		Anesthesia:         p.Anesthesia,
		Coding:             p.Coding,
		Description:        p.Description.In(locale),
		Indications:        textsIn(p.Indications, locale),
		WhatToExpect:       p.WhatToExpect.In(locale),
		PatientExplanation: p.PatientExplanation.In(locale),
		Preparation:        p.Preparation.In(locale),
		PreProcedure:       p.PreProcedure.In(locale),
		Steps:              p.Steps.In(locale),
		PostProcedure:      p.PostProcedure.In(locale),
		Complications:      textsIn(p.Complications, locale),
		Contraindications:  textsIn(p.Contraindications, locale),
		Alternatives:       textsIn(p.Alternatives, locale),
		Recovery:           p.Recovery.In(locale),
	}
}

// BilingualLists returns the localized list fields keyed by field name
func (p *ProcedureEntry) BilingualLists() map[string][]LocalizedText {
	return map[string][]LocalizedText{
		"indications":       p.Indications,
		"complications":     p.Complications,
		"contraindications": p.Contraindications,
		"alternatives":      p.Alternatives,
	}
}
