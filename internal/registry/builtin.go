package registry

import id "complia/pkg/domain"

// builtin is the regulatory reference data the platform ships with. New
// markets are added here (or injected before Freeze), never at runtime.
var builtin = []Regulation{
	// Healthcare
	{ID: "HIPAA", Sector: id.SectorHealthcare, Name: "Health Insurance Portability and Accountability Act", Jurisdictions: []string{"US"}},
	{ID: "GDPR_HEALTH", Sector: id.SectorHealthcare, Name: "GDPR Health Data Provisions", Jurisdictions: []string{"EU"}},
	{ID: "LGPD_HEALTH", Sector: id.SectorHealthcare, Name: "LGPD Health Data Provisions", Jurisdictions: []string{"Brazil"}},

	// Financial
	{ID: "PSD2", Sector: id.SectorFinancial, Name: "Payment Services Directive 2", Jurisdictions: []string{"EU"}},
	{ID: "SOX", Sector: id.SectorFinancial, Name: "Sarbanes-Oxley Act", Jurisdictions: []string{"US"}},
	{ID: "BACEN_4893", Sector: id.SectorFinancial, Name: "BACEN Resolution 4.893", Jurisdictions: []string{"Brazil"}},
	{ID: "BNA_CYBER", Sector: id.SectorFinancial, Name: "BNA Cybersecurity Notice", Jurisdictions: []string{"Angola"}},

	// Government
	{ID: "FEDRAMP", Sector: id.SectorGovernment, Name: "Federal Risk and Authorization Management Program", Jurisdictions: []string{"US"}},
	{ID: "ENS", Sector: id.SectorGovernment, Name: "Esquema Nacional de Seguridad", Jurisdictions: []string{"EU"}},

	// AR/VR
	{ID: "GDPR_XR", Sector: id.SectorARVR, Name: "GDPR Extended Reality Provisions", Jurisdictions: []string{"EU"}},
	{ID: "COPPA_XR", Sector: id.SectorARVR, Name: "COPPA Extended Reality Provisions", Jurisdictions: []string{"US"}},

	// Cross-sector
	{ID: "ISO27001", Sector: id.SectorMulti, Name: "ISO/IEC 27001", Jurisdictions: []string{"US", "EU", "Brazil", "Angola"}},
	{ID: "SOC2", Sector: id.SectorMulti, Name: "SOC 2", Jurisdictions: []string{"US", "EU"}},
}

// NewBuiltin returns a frozen registry loaded with the built-in reference
// data.
func NewBuiltin() *Registry {
	r := New()
	for _, reg := range builtin {
		// Builtin data is validated by tests; a bad entry is a programming
		// error worth failing loudly on.
		if err := r.Add(reg); err != nil {
			panic("registry: invalid builtin regulation " + reg.ID + ": " + err.Error())
		}
	}
	r.Freeze()
	return r
}
