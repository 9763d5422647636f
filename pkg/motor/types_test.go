package motor_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsurely/motor-go/pkg/motor"
)

func TestDriver_FullName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ada King", (&motor.Driver{FirstName: "Ada", MiddleName: " ", LastName: "King"}).FullName())
	assert.Equal(t, "Ada B. King", (&motor.Driver{FirstName: "Ada", MiddleName: "B.", LastName: "King"}).FullName())
	assert.Empty(t, (&motor.Driver{}).FullName())
}

func TestVehicleSearch_Params(t *testing.T) {
	t.Parallel()

	active := true
	approved := false

	var nilSearch *motor.VehicleSearch
	assert.Equal(t, "full=t", nilSearch.Params().Encode())

	search := &motor.VehicleSearch{RegPlate: "AB12 CDE", IsActive: &active, IsApproved: &approved, Brief: true}
	assert.Equal(t, "full=f&isActive=true&isApproved=false&regPlate=AB12+CDE", search.Params().Encode())
}

func TestFleet_TagList(t *testing.T) {
	t.Parallel()

	assert.Nil(t, (&motor.Fleet{Tags: " "}).TagList())
	assert.Equal(t, []string{"a", "b"}, (&motor.Fleet{Tags: "a,,b, "}).TagList())
	assert.Equal(t, "desc", (&motor.Fleet{Description: "desc"}).DescriptionIn(""))
}

func TestPolicy_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var policy motor.Policy

	require.NoError(t, json.Unmarshal([]byte(`{"id":"p-1","isActivePolicy":true,"sumInsured":15000,"vehicleRegPlate":"AB12"}`), &policy))
	assert.Equal(t, "p-1", policy.ID)
	assert.True(t, policy.IsActive)
	assert.InDelta(t, 15000.0, policy.SumInsured, 0.001)
	assert.Equal(t, "AB12", policy.Raw["vehicleRegPlate"])

	require.Error(t, json.Unmarshal([]byte(`{"id":1}`), &policy))
}

func TestBillingEventStatus_Valid(t *testing.T) {
	t.Parallel()

	for _, status := range []motor.BillingEventStatus{
		motor.BillingEventPending, motor.BillingEventPaid, motor.BillingEventFailed,
		motor.BillingEventCancelled, motor.BillingEventConfirmed,
	} {
		assert.True(t, status.Valid(), status)
	}

	assert.False(t, motor.BillingEventStatus("refunded").Valid())
	assert.Empty(t, (&motor.BillingEvent{}).Currency())
}

func TestOrgSettings_Language(t *testing.T) {
	t.Parallel()

	var missing *motor.OrgSettings
	assert.Equal(t, motor.DefaultLanguage, missing.Language())

	settings := &motor.OrgSettings{DefaultLang: "de"}
	assert.Equal(t, "de", settings.Language())

	settings.Config = &motor.OrgOnboardingRules{DefaultLang: "it"}
	assert.Equal(t, "it", settings.Language())

	settings.Config.DefaultLang = ""
	assert.Equal(t, "de", settings.Language())

	var decoded motor.OrgSettings
	require.NoError(t, json.Unmarshal([]byte(`{"id":"org-1","features":{"claimsOn":true},"config":{"defaultLang":"es"}}`), &decoded))
	assert.True(t, decoded.Features.ClaimsOn)
	assert.Equal(t, "es", decoded.Language())
}
