package motor

import (
	"encoding/json"
	"strings"
	"time"
)

// Risk is the scoring summary attached to drivers, vehicles and fleets.
type Risk struct {
	Score       *float64 `json:"score,omitempty"       yaml:"score,omitempty"`
	Trips       *int     `json:"trips,omitempty"       yaml:"trips,omitempty"`
	DistanceKm  *float64 `json:"distanceKm,omitempty"  yaml:"distance_km,omitempty"`
	LastUpdated string   `json:"lastUpdated,omitempty" yaml:"last_updated,omitempty"`
}

// Address is the postal address block shared by drivers and billing accounts.
type Address struct {
	AdrLine1       string `json:"adrLine1,omitempty"       yaml:"adr_line_1,omitempty"`
	AdrLine2       string `json:"adrLine2,omitempty"       yaml:"adr_line_2,omitempty"`
	AdrLine3       string `json:"adrLine3,omitempty"       yaml:"adr_line_3,omitempty"`
	County         string `json:"county,omitempty"         yaml:"county,omitempty"`
	Province       string `json:"province,omitempty"       yaml:"province,omitempty"`
	Postcode       string `json:"postcode,omitempty"       yaml:"postcode,omitempty"`
	CountryIsoCode string `json:"countryIsoCode,omitempty" yaml:"country_iso_code,omitempty"`
	CountryName    string `json:"countryName,omitempty"    yaml:"country_name,omitempty"`
}

// Driver is an insured driver.
type Driver struct {
	ID               string     `json:"id"                          yaml:"id"`
	SourceID         string     `json:"sourceId,omitempty"          yaml:"source_id,omitempty"`
	ExternalID       string     `json:"externalId,omitempty"        yaml:"external_id,omitempty"`
	FirstName        string     `json:"firstName,omitempty"         yaml:"first_name,omitempty"`
	MiddleName       string     `json:"middleName,omitempty"        yaml:"middle_name,omitempty"`
	LastName         string     `json:"lastName,omitempty"          yaml:"last_name,omitempty"`
	Gender           string     `json:"gender,omitempty"            yaml:"gender,omitempty"`
	Email            string     `json:"email,omitempty"             yaml:"email,omitempty"`
	TelE164          string     `json:"telE164,omitempty"           yaml:"tel_e164,omitempty"`
	Dob              Date       `json:"dob,omitzero"                yaml:"dob,omitempty"`
	Lang             string     `json:"lang,omitempty"              yaml:"lang,omitempty"`
	DrivingStartDate Date       `json:"drivingStartDate,omitzero"   yaml:"driving_start_date,omitempty"`
	Occupation       string     `json:"occupation,omitempty"        yaml:"occupation,omitempty"`
	APIPath          string     `json:"apiPath,omitempty"           yaml:"api_path,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"        yaml:"approved_at,omitempty"`
	ActivationID     string     `json:"activationId,omitempty"      yaml:"activation_id,omitempty"`
	DriverActivated  bool       `json:"driverActivated,omitempty"   yaml:"driver_activated,omitempty"`
	ActivatedAt      *time.Time `json:"activatedAt,omitempty"       yaml:"activated_at,omitempty"`
	IsApproved       bool       `json:"isApproved,omitempty"        yaml:"is_approved,omitempty"`
	IsActive         bool       `json:"isActive,omitempty"          yaml:"is_active,omitempty"`
	VehicleCount     int        `json:"vehicleCount,omitempty"      yaml:"vehicle_count,omitempty"`
	TotalPoints      int        `json:"totalPoints,omitempty"       yaml:"total_points,omitempty"`
	DistanceKm30Days float64    `json:"distanceKm30Days,omitempty"  yaml:"distance_km_30_days,omitempty"`
	Risk             *Risk      `json:"risk,omitempty"              yaml:"risk,omitempty"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"         yaml:"created_at,omitempty"`
	Address
}

// FullName joins the non-empty name parts.
func (d *Driver) FullName() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{d.FirstName, d.MiddleName, d.LastName} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, " ")
}

// DriverSignup is the profile a driver creates for themselves.
type DriverSignup struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	// Extra holds any other driver fields. The named fields win on conflict.
	Extra map[string]any
}

// Fields returns the request body for the signup.
func (s *DriverSignup) Fields() (map[string]any, error) {
	if s == nil || strings.TrimSpace(s.Email) == "" {
		return nil, ErrEmailRequired
	}

	if s.Password == "" {
		return nil, ErrPasswordRequired
	}

	if strings.TrimSpace(s.FirstName) == "" || strings.TrimSpace(s.LastName) == "" {
		return nil, ErrNameRequired
	}

	fields := make(map[string]any, len(s.Extra)+4)
	for k, v := range s.Extra {
		fields[k] = v
	}

	fields["email"] = strings.TrimSpace(s.Email)
	fields["password"] = s.Password
	fields["firstName"] = strings.TrimSpace(s.FirstName)
	fields["lastName"] = strings.TrimSpace(s.LastName)

	return fields, nil
}

// Vehicle is a make/model catalogue entry.
type Vehicle struct {
	ID          string  `json:"id"                    yaml:"id"`
	ExternalID  string  `json:"externalId,omitempty"  yaml:"external_id,omitempty"`
	Display     string  `json:"display,omitempty"     yaml:"display,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	IsActive    bool    `json:"isActive,omitempty"    yaml:"is_active,omitempty"`
	VehicleType string  `json:"vehicleType,omitempty" yaml:"vehicle_type,omitempty"`
	Variant     string  `json:"variant,omitempty"     yaml:"variant,omitempty"`
	Code        string  `json:"code,omitempty"        yaml:"code,omitempty"`
	Brand       string  `json:"brand,omitempty"       yaml:"brand,omitempty"`
	Model       string  `json:"model,omitempty"       yaml:"model,omitempty"`
	YearFloor   int     `json:"yearFloor,omitempty"   yaml:"year_floor,omitempty"`
	YearTop     int     `json:"yearTop,omitempty"     yaml:"year_top,omitempty"`
	Doors       int     `json:"doors,omitempty"       yaml:"doors,omitempty"`
	Seats       int     `json:"seats,omitempty"       yaml:"seats,omitempty"`
	FuelType    string  `json:"fuelType,omitempty"    yaml:"fuel_type,omitempty"`
	HorsePower  int     `json:"horsePower,omitempty"  yaml:"horse_power,omitempty"`
	BaseMsrpNew float64 `json:"baseMsrpNew,omitempty" yaml:"base_msrp_new,omitempty"`
}

// RegisteredVehicle is a physical vehicle registered with the organization.
type RegisteredVehicle struct {
	ID              string     `json:"id"                        yaml:"id"`
	SourceID        string     `json:"sourceId,omitempty"        yaml:"source_id,omitempty"`
	RegPlate        string     `json:"regPlate,omitempty"        yaml:"reg_plate,omitempty"`
	Vin             string     `json:"vin,omitempty"             yaml:"vin,omitempty"`
	Year            int        `json:"year,omitempty"            yaml:"year,omitempty"`
	Preowned        bool       `json:"preowned,omitempty"        yaml:"preowned,omitempty"`
	IsApproved      bool       `json:"isApproved,omitempty"      yaml:"is_approved,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"      yaml:"approved_at,omitempty"`
	IsActive        bool       `json:"isActive,omitempty"        yaml:"is_active,omitempty"`
	OnRoadParking   bool       `json:"onRoadParking,omitempty"   yaml:"on_road_parking,omitempty"`
	MileageKm       float64    `json:"mileageKm,omitempty"       yaml:"mileage_km,omitempty"`
	EngineLitres    float64    `json:"engineLitres,omitempty"    yaml:"engine_litres,omitempty"`
	FuelType        string     `json:"fuelType,omitempty"        yaml:"fuel_type,omitempty"`
	GearboxType     string     `json:"gearboxType,omitempty"     yaml:"gearbox_type,omitempty"`
	HasTurbo        bool       `json:"hasTurbo,omitempty"        yaml:"has_turbo,omitempty"`
	HasSupercharger bool       `json:"hasSupercharger,omitempty" yaml:"has_supercharger,omitempty"`
	BodyModified    bool       `json:"bodyModified,omitempty"    yaml:"body_modified,omitempty"`
	EngineModified  bool       `json:"engineModified,omitempty"  yaml:"engine_modified,omitempty"`
	Distance3m      float64    `json:"distance3m,omitempty"      yaml:"distance_3m,omitempty"`
	TotalDrvCount   int        `json:"totalDrvCount,omitempty"   yaml:"total_drv_count,omitempty"`
	FrontPicLoc     string     `json:"frontPicLoc,omitempty"     yaml:"front_pic_loc,omitempty"`
	ProofOfRegLoc   string     `json:"proofOfRegLoc,omitempty"   yaml:"proof_of_reg_loc,omitempty"`
	Vehicle         *Vehicle   `json:"vehicle,omitempty"         yaml:"vehicle,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"       yaml:"created_at,omitempty"`
}

// VehicleSearch filters registered vehicles. Nil pointers are left out of
// the query.
type VehicleSearch struct {
	RegPlate   string
	Vin        string
	IsActive   *bool
	IsApproved *bool
	// Brief requests the short record form (full=f). The API defaults to full.
	Brief bool
}

// Params converts the search into query parameters.
func (s *VehicleSearch) Params() Params {
	params := Params{}
	if s == nil {
		return params.Set("full", "t")
	}

	if s.RegPlate != "" {
		params["regPlate"] = s.RegPlate
	}

	if s.Vin != "" {
		params["vin"] = s.Vin
	}

	if s.IsActive != nil {
		params["isActive"] = *s.IsActive
	}

	if s.IsApproved != nil {
		params["isApproved"] = *s.IsApproved
	}

	if s.Brief {
		params["full"] = "f"
	} else {
		params["full"] = "t"
	}

	return params
}

// Fleet groups drivers and vehicles.
type Fleet struct {
	ID                       string                       `json:"id"                                 yaml:"id"`
	ExternalID               string                       `json:"externalId,omitempty"               yaml:"external_id,omitempty"`
	Display                  string                       `json:"display"                            yaml:"display"`
	Description              string                       `json:"description,omitempty"              yaml:"description,omitempty"`
	Tags                     string                       `json:"tags,omitempty"                     yaml:"tags,omitempty"`
	IsActive                 bool                         `json:"isActive"                           yaml:"is_active"`
	RequiresDriverAssignment bool                         `json:"requiresDriverAssignment"           yaml:"requires_driver_assignment"`
	BasePremiumBillingProc   string                       `json:"basePremiumBillingProc,omitempty"   yaml:"base_premium_billing_proc,omitempty"`
	RatesBillingProc         string                       `json:"ratesBillingProc,omitempty"         yaml:"rates_billing_proc,omitempty"`
	ParentID                 string                       `json:"parentId,omitempty"                 yaml:"parent_id,omitempty"`
	Translations             map[string]map[string]string `json:"translations,omitempty"             yaml:"translations,omitempty"`
	VehicleCount             int                          `json:"vehicleCount,omitempty"             yaml:"vehicle_count,omitempty"`
	DriverCount              int                          `json:"driverCount,omitempty"              yaml:"driver_count,omitempty"`
	SubFleetCount            int                          `json:"subFleetCount,omitempty"            yaml:"sub_fleet_count,omitempty"`
	Risk                     *Risk                        `json:"risk,omitempty"                     yaml:"risk,omitempty"`
	CreatedAt                *time.Time                   `json:"createdAt,omitempty"                yaml:"created_at,omitempty"`
}

// HasParent reports whether the fleet is a sub fleet.
func (f *Fleet) HasParent() bool {
	return f.ParentID != ""
}

// TagList splits the comma separated tags.
func (f *Fleet) TagList() []string {
	if strings.TrimSpace(f.Tags) == "" {
		return nil
	}

	parts := strings.Split(f.Tags, ",")
	tags := make([]string, 0, len(parts))

	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}

	return tags
}

// DisplayIn returns the display name translated into lang, falling back to
// the default display name.
func (f *Fleet) DisplayIn(lang string) string {
	return f.translate("display", lang, f.Display)
}

// DescriptionIn returns the description translated into lang.
func (f *Fleet) DescriptionIn(lang string) string {
	return f.translate("description", lang, f.Description)
}

func (f *Fleet) translate(key, lang, fallback string) string {
	if lang == "" {
		return fallback
	}

	if value := f.Translations[key][lang]; value != "" {
		return value
	}

	return fallback
}

// FleetDriver is a driver's membership of a fleet.
type FleetDriver struct {
	IsVehicleManager bool       `json:"isVehicleManager"    yaml:"is_vehicle_manager"`
	IsDriverManager  bool       `json:"isDriverManager"     yaml:"is_driver_manager"`
	IsBillingManager bool       `json:"isBillingManager"    yaml:"is_billing_manager"`
	IsActive         bool       `json:"isActive"            yaml:"is_active"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty" yaml:"expires_at,omitempty"`
	CreatedAt        *time.Time `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	Driver           *Driver    `json:"driver,omitempty"    yaml:"driver,omitempty"`
}

// FleetVehicle is a vehicle's membership of a fleet.
type FleetVehicle struct {
	SourceID          string             `json:"sourceId,omitempty"          yaml:"source_id,omitempty"`
	ExpiresAt         *time.Time         `json:"expiresAt,omitempty"         yaml:"expires_at,omitempty"`
	CreatedAt         *time.Time         `json:"createdAt,omitempty"         yaml:"created_at,omitempty"`
	RegisteredVehicle *RegisteredVehicle `json:"registeredVehicle,omitempty" yaml:"registered_vehicle,omitempty"`
}

// FleetMembers is every driver and vehicle in a fleet.
type FleetMembers struct {
	Drivers  []FleetDriver  `json:"drivers"  yaml:"drivers"`
	Vehicles []FleetVehicle `json:"vehicles" yaml:"vehicles"`
}

// BillingAccount is a payment account owned by a driver or fleet.
type BillingAccount struct {
	ID              string     `json:"id"                        yaml:"id"`
	ExternalID      string     `json:"externalId,omitempty"      yaml:"external_id,omitempty"`
	Expiry          string     `json:"expiry,omitempty"          yaml:"expiry,omitempty"`
	IsActive        bool       `json:"isActive"                  yaml:"is_active"`
	IsPrimary       bool       `json:"isPrimary"                 yaml:"is_primary"`
	CurrencyIsoCode string     `json:"currencyIsoCode,omitempty" yaml:"currency_iso_code,omitempty"`
	ThirdPartyID    string     `json:"thirdPartyId,omitempty"    yaml:"third_party_id,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"       yaml:"updated_at,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"       yaml:"created_at,omitempty"`
	Address
}

// Policy is an insurance policy. Only the fields every policy type carries are
// typed; the full record stays available in Raw.
type Policy struct {
	ID            string         `json:"id"                      yaml:"id"`
	PolicyType    string         `json:"policyType,omitempty"    yaml:"policy_type,omitempty"`
	IsActive      bool           `json:"isActivePolicy"          yaml:"is_active"`
	SumInsured    float64        `json:"sumInsured,omitempty"    yaml:"sum_insured,omitempty"`
	CanRenew      bool           `json:"canRenew,omitempty"      yaml:"can_renew,omitempty"`
	Cover         []string       `json:"cover,omitempty"         yaml:"cover,omitempty"`
	MaxPassengers int            `json:"maxPassengers,omitempty" yaml:"max_passengers,omitempty"`
	CreatedAt     *time.Time     `json:"createdAt,omitempty"     yaml:"created_at,omitempty"`
	Raw           map[string]any `json:"-"                       yaml:"-"`
}

// UnmarshalJSON decodes the typed fields and keeps the whole record in Raw.
func (p *Policy) UnmarshalJSON(data []byte) error {
	type plain Policy

	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	if err := json.Unmarshal(data, &decoded.Raw); err != nil {
		return err
	}

	*p = Policy(decoded)

	return nil
}

// BillingEventStatus is the payment state of a billing event.
type BillingEventStatus string

const (
	BillingEventPending   BillingEventStatus = "pending"
	BillingEventPaid      BillingEventStatus = "paid"
	BillingEventFailed    BillingEventStatus = "failed"
	BillingEventCancelled BillingEventStatus = "cancelled"
	BillingEventConfirmed BillingEventStatus = "confirmed"
)

// Valid reports whether s is a known status.
func (s BillingEventStatus) Valid() bool {
	switch s {
	case BillingEventPending, BillingEventPaid, BillingEventFailed, BillingEventCancelled, BillingEventConfirmed:
		return true
	}

	return false
}

// BillingEvent is a charge or payout against a billing account.
type BillingEvent struct {
	ID             string             `json:"id"                       yaml:"id"`
	ExternalID     string             `json:"externalId,omitempty"     yaml:"external_id,omitempty"`
	PaymentID      string             `json:"paymentId,omitempty"      yaml:"payment_id,omitempty"`
	Amount         int                `json:"amount"                   yaml:"amount"`
	Message        string             `json:"message,omitempty"        yaml:"message,omitempty"`
	PaymentOut     bool               `json:"paymentOut"               yaml:"payment_out"`
	PaymentDate    *time.Time         `json:"paymentDate,omitempty"    yaml:"payment_date,omitempty"`
	Status         BillingEventStatus `json:"status,omitempty"         yaml:"status,omitempty"`
	ApprovalAt     *time.Time         `json:"approvalAt,omitempty"     yaml:"approval_at,omitempty"`
	ApprovalBy     string             `json:"approvalBy,omitempty"     yaml:"approval_by,omitempty"`
	PolicyID       string             `json:"policyId,omitempty"       yaml:"policy_id,omitempty"`
	Type           string             `json:"type,omitempty"           yaml:"type,omitempty"`
	BillingAccount *BillingAccount    `json:"billingAccount,omitempty" yaml:"billing_account,omitempty"`
	CreatedAt      *time.Time         `json:"createdAt,omitempty"      yaml:"created_at,omitempty"`
}

// Currency returns the ISO currency of the attached billing account.
func (e *BillingEvent) Currency() string {
	if e.BillingAccount == nil {
		return ""
	}

	return e.BillingAccount.CurrencyIsoCode
}

// IsApproved reports whether the event has been approved.
func (e *BillingEvent) IsApproved() bool {
	return e.ApprovalAt != nil
}
