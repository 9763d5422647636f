package motor

// OrgSettings is the public configuration of an organization, served
// unauthenticated from /public/{orgId}.
type OrgSettings struct {
	ID                  string              `json:"id,omitempty"                  yaml:"id,omitempty"`
	ProfileType         string              `json:"profileType,omitempty"         yaml:"profile_type,omitempty"`
	SourceIDType        string              `json:"sourceIdType,omitempty"        yaml:"source_id_type,omitempty"`
	ExternalID          string              `json:"externalId,omitempty"          yaml:"external_id,omitempty"`
	DisplayName         string              `json:"displayName,omitempty"         yaml:"display_name,omitempty"`
	Env                 string              `json:"env,omitempty"                 yaml:"env,omitempty"`
	IsActive            *bool               `json:"isActive,omitempty"            yaml:"is_active,omitempty"`
	CreatedAt           string              `json:"createdAt,omitempty"           yaml:"created_at,omitempty"`
	OrgGroupID          string              `json:"orgGroupId,omitempty"          yaml:"org_group_id,omitempty"`
	OrgGroupDisplayName string              `json:"orgGroupDisplayName,omitempty" yaml:"org_group_display_name,omitempty"`
	DefaultLang         string              `json:"defaultLang,omitempty"         yaml:"default_lang,omitempty"`
	Design              *OrgDesign          `json:"design,omitempty"              yaml:"design,omitempty"`
	Policy              *OrgPolicyToggles   `json:"policy,omitempty"              yaml:"policy,omitempty"`
	Features            *OrgFeatures        `json:"features,omitempty"            yaml:"features,omitempty"`
	App                 *OrgApp             `json:"app,omitempty"                 yaml:"app,omitempty"`
	Telematics          *OrgTelematics      `json:"telematics,omitempty"          yaml:"telematics,omitempty"`
	Tos                 *OrgTos             `json:"tos,omitempty"                 yaml:"tos,omitempty"`
	Config              *OrgOnboardingRules `json:"config,omitempty"              yaml:"config,omitempty"`
}

// OrgDesign holds branding.
type OrgDesign struct {
	PrimaryHex            string `json:"primaryHex"            yaml:"primary_hex"`
	SecondaryHex          string `json:"secondaryHex"          yaml:"secondary_hex"`
	TertiaryHex           string `json:"tertiaryHex"           yaml:"tertiary_hex"`
	FontFamilyPrimary     string `json:"fontFamilyPrimary"     yaml:"font_family_primary"`
	FontFamilySecondary   string `json:"fontFamilySecondary"   yaml:"font_family_secondary"`
	FontPrimaryHex        string `json:"fontPrimaryHex"        yaml:"font_primary_hex"`
	FontSecondaryHex      string `json:"fontSecondaryHex"      yaml:"font_secondary_hex"`
	PrimaryLogoURL        string `json:"primaryLogoUrl"        yaml:"primary_logo_url"`
	SecondaryLogoURL      string `json:"secondaryLogoUrl"      yaml:"secondary_logo_url"`
	PrimaryLogoURLSmall   string `json:"primaryLogoUrlSmall"   yaml:"primary_logo_url_small"`
	SecondaryLogoURLSmall string `json:"secondaryLogoUrlSmall" yaml:"secondary_logo_url_small"`
}

// OrgPolicyToggles says which entities policies can be attached to.
type OrgPolicyToggles struct {
	PolicyDrvOn    bool `json:"policyDrvOn"    yaml:"policy_drv_on"`
	PolicyRvOn     bool `json:"policyRvOn"     yaml:"policy_rv_on"`
	PolicyDriverOn bool `json:"policyDriverOn" yaml:"policy_driver_on"`
	PolicyFleetOn  bool `json:"policyFleetOn"  yaml:"policy_fleet_on"`
}

// OrgFeatures are product feature switches.
type OrgFeatures struct {
	ClaimsOn             bool `json:"claimsOn"             yaml:"claims_on"`
	EmergenciesOn        bool `json:"emergenciesOn"        yaml:"emergencies_on"`
	RewardsOn            bool `json:"rewardsOn"            yaml:"rewards_on"`
	ScoringOn            bool `json:"scoringOn"            yaml:"scoring_on"`
	ScoringLeaderboardOn bool `json:"scoringLeaderboardOn" yaml:"scoring_leaderboard_on"`
	BillingOn            bool `json:"billingOn"            yaml:"billing_on"`
	FleetOn              bool `json:"fleetOn"              yaml:"fleet_on"`
	FleetBillingOn       bool `json:"fleetBillingOn"       yaml:"fleet_billing_on"`
}

// OrgApp configures the mobile app.
type OrgApp struct {
	AutoTrackingOn bool `json:"autoTrackingOn" yaml:"auto_tracking_on"`
	UILayout       int  `json:"uiLayout"       yaml:"ui_layout"`
	ShowTripsOn    bool `json:"showTripsOn"    yaml:"show_trips_on"`
	SignupOn       bool `json:"signupOn"       yaml:"signup_on"`
}

// OrgTelematics carries free form tracking configuration.
type OrgTelematics struct {
	AutoTracking map[string]any `json:"autoTracking" yaml:"auto_tracking"`
	DataCapture  map[string]any `json:"dataCapture"  yaml:"data_capture"`
}

// OrgTos holds terms of service and privacy policy details.
type OrgTos struct {
	ContactEmail            string `json:"contactEmail"            yaml:"contact_email"`
	RequirePrivacyAgreement bool   `json:"requirePrivacyAgreement" yaml:"require_privacy_agreement"`
	PrivacyPolicyDisplay    string `json:"privacyPolicyDisplay"    yaml:"privacy_policy_display"`
	PrivacyPolicyURL        string `json:"privacyPolicyUrl"        yaml:"privacy_policy_url"`
	PrivacyPolicyHTML       string `json:"privacyPolicyHtml"       yaml:"privacy_policy_html"`
	RequireTosAgreement     bool   `json:"requireTosAgreement"     yaml:"require_tos_agreement"`
	TosDisplay              string `json:"tosDisplay"              yaml:"tos_display"`
	TosURL                  string `json:"tosUrl"                  yaml:"tos_url"`
	TosHTML                 string `json:"tosHtml"                 yaml:"tos_html"`
	DPOEmail                string `json:"DPOEmail"                yaml:"dpo_email"`
}

// OrgOnboardingRules lists what drivers and vehicles must provide.
type OrgOnboardingRules struct {
	DefaultLang              string `json:"defaultLang"              yaml:"default_lang"`
	RequireProofOfAddress    bool   `json:"requireProofOfAddress"    yaml:"require_proof_of_address"`
	RequireID                bool   `json:"requireId"                yaml:"require_id"`
	RequireSelfie            bool   `json:"requireSelfie"            yaml:"require_selfie"`
	RequireVehiclePicFull    bool   `json:"requireVehiclePicFull"    yaml:"require_vehicle_pic_full"`
	RequireVehiclePicSingle  bool   `json:"requireVehiclePicSingle"  yaml:"require_vehicle_pic_single"`
	RequireVehicleProofOfReg bool   `json:"requireVehicleProofOfReg" yaml:"require_vehicle_proof_of_reg"`
	RequireDriversLicense    bool   `json:"requireDriversLicense"    yaml:"require_drivers_license"`
	DriverApproval           bool   `json:"driverApproval"           yaml:"driver_approval"`
	VehicleApproval          bool   `json:"vehicleApproval"          yaml:"vehicle_approval"`
	UseVehicleRegistry       bool   `json:"useVehicleRegistry"       yaml:"use_vehicle_registry"`
}

// DefaultLanguage is returned when an organization sets no language.
const DefaultLanguage = "en"

// Language returns the organization's default language code.
func (s *OrgSettings) Language() string {
	if s == nil {
		return DefaultLanguage
	}

	if s.Config != nil && s.Config.DefaultLang != "" {
		return s.Config.DefaultLang
	}

	if s.DefaultLang != "" {
		return s.DefaultLang
	}

	return DefaultLanguage
}
