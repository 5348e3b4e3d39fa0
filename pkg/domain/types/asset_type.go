package types

import "fmt"

// AssetType classifies an information asset following the MAGERIT v3.0
// asset taxonomy
type AssetType string

const (
	AssetTypeHardware   AssetType = "hardware"
	AssetTypeSoftware   AssetType = "software"
	AssetTypeData       AssetType = "data"
	AssetTypeComms      AssetType = "comms"
	AssetTypeServices   AssetType = "services"
	AssetTypeFacilities AssetType = "facilities"
	AssetTypePersonnel  AssetType = "personnel"
)

// AllAssetTypes returns all valid asset types
func AllAssetTypes() []AssetType {
	return []AssetType{
		AssetTypeHardware,
		AssetTypeSoftware,
		AssetTypeData,
		AssetTypeComms,
		AssetTypeServices,
		AssetTypeFacilities,
		AssetTypePersonnel,
	}
}

// IsValid checks if the asset type is valid
func (t AssetType) IsValid() bool {
	switch t {
	case AssetTypeHardware,
		AssetTypeSoftware,
		AssetTypeData,
		AssetTypeComms,
		AssetTypeServices,
		AssetTypeFacilities,
		AssetTypePersonnel:
		return true
	default:
		return false
	}
}

// String returns the string representation of the asset type
func (t AssetType) String() string {
	return string(t)
}

// ParseAssetType parses a string into an AssetType
func ParseAssetType(s string) (AssetType, error) {
	t := AssetType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid asset type: %s", s)
	}
	return t, nil
}
