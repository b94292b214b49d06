package snapshot

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseDeleteKeys(t *testing.T) {
	cases := []struct {
		name     string
		payload  string
		want     DeleteKeys
		complete bool
	}{
		{name: "strings", payload: `{"vendor_id":"v-1","vendor_product_id":"sku-9"}`, want: DeleteKeys{VendorID: "v-1", VendorProductID: "sku-9"}, complete: true},
		{name: "numbers", payload: `{"vendor_id":12,"vendor_product_id":3400}`, want: DeleteKeys{VendorID: "12", VendorProductID: "3400"}, complete: true},
		{name: "missing product", payload: `{"vendor_id":"v-1"}`, want: DeleteKeys{VendorID: "v-1"}},
		{name: "blank", payload: `{"vendor_id":"  ","vendor_product_id":"sku"}`, want: DeleteKeys{VendorProductID: "sku"}},
		{name: "empty", payload: ``},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			keys, err := ParseDeleteKeys([]byte(tc.payload))
			require.NoError(t, err)
			require.Equal(t, tc.want, keys)
			require.Equal(t, tc.complete, keys.Complete())
		})
	}
}

func TestParseDeleteKeysInvalidJSON(t *testing.T) {
	_, err := ParseDeleteKeys([]byte(`{`))
	require.Error(t, err)
}

func TestParseIssues(t *testing.T) {
	issues, err := ParseIssues([]byte(`["missing_name", {"field":"sku","rule":"format"}, 3]`))
	require.NoError(t, err)
	require.Len(t, issues, 3)
	require.Equal(t, "missing_name", issues[0])
	require.JSONEq(t, `{"field":"sku","rule":"format"}`, issues[1])
	require.Equal(t, "3", issues[2])

	issues, err = ParseIssues([]byte("null"))
	require.NoError(t, err)
	require.Nil(t, issues)

	_, err = ParseIssues([]byte(`"not-an-array"`))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, LineageRun{ID: "r1", EntityID: "e1", SourceSystem: "erp"}.Validate())
	require.True(t, errors.Is(LineageRun{ID: "r1", EntityID: "e1"}.Validate(), ErrInvalid))
	require.True(t, errors.Is(AuditEntry{}.Validate(), ErrInvalid))
	require.True(t, errors.Is(QualityScore{EntityType: "product"}.Validate(), ErrInvalid))
	require.True(t, errors.Is(VendorMapping{ID: "m1", VendorID: "v1", VendorProductID: "sku"}.Validate(), ErrInvalid))
	require.NoError(t, VendorMapping{ID: "m1", VendorID: "v1", VendorProductID: "sku", GlobalProductID: "p1"}.Validate())
}

func TestFloat(t *testing.T) {
	require.Nil(t, Float(decimal.NullDecimal{}))
	require.Equal(t, 0.875, Float(decimal.NewNullDecimal(decimal.RequireFromString("0.875"))))
}
