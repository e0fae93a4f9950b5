package setting

// Keys referenced by code.
const (
	KeyShowLeidingPage   = "show_leiding_page"
	KeyRegistrationsOpen = "registrations_open"
	KeyShowCalendar      = "show_calendar"
	KeyCampBrochurePDF   = "pdf_camp_brochure"
	KeyMedicalFormPDF    = "pdf_medical_form"
	KeyPrivacyPolicyPDF  = "pdf_privacy_policy"
)

// DefaultSettings returns the known settings and their default values.
//
// Boolean rows toggle public-site sections; string rows hold the public URL of
// a PDF uploaded to the "files" bucket (empty until one is uploaded).
func DefaultSettings() []Setting {
	return []Setting{
		{
			Key:         KeyShowLeidingPage,
			Type:        TypeBoolean,
			Value:       "true",
			Description: "Show the leiding overview on the public site",
		},
		{
			Key:         KeyRegistrationsOpen,
			Type:        TypeBoolean,
			Value:       "false",
			Description: "Accept new member registrations",
		},
		{
			Key:         KeyShowCalendar,
			Type:        TypeBoolean,
			Value:       "true",
			Description: "Show the activity calendar on the public site",
		},
		{
			Key:         KeyCampBrochurePDF,
			Type:        TypeString,
			Description: "Camp brochure (PDF)",
		},
		{
			Key:         KeyMedicalFormPDF,
			Type:        TypeString,
			Description: "Medical form (PDF)",
		},
		{
			Key:         KeyPrivacyPolicyPDF,
			Type:        TypeString,
			Description: "Privacy policy (PDF)",
		},
	}
}
