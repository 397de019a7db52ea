package preprocessing

// Column names produced by Preprocess.
const (
	PriceColumn    = "price"
	SqFtColumn     = "sqFt"
	SaleDateColumn = "saleDate"
	SaleMonth      = "saleMonth"
	SaleYear       = "saleYear"

	TrueHPIColumn      = "trueValueHomePriceIndex"
	AvailableHPIColumn = "availableValueHomePriceIndex"

	PricePerSqFtColumn               = "pricePerSqFt"
	TimeNormalizedPricePerSqFtColumn = "timeNormalizedPricePerSqFt"
	LogPriceColumn                   = "logPrice"

	YearBuiltColumn = "yearBuilt"
	UnitCountColumn = "features_unitCount"

	// FeaturePrefix starts every column expanded from the features object.
	FeaturePrefix = "features_"
	// MissingSuffix ends every sentinel column marking an imputed value.
	MissingSuffix = "_nan"
	// HPISuffix ends the home price index columns joined onto listings.
	HPISuffix = "HomePriceIndex"
)

// ZeroFillColumns are the numeric prediction features whose missing values
// are replaced with 0, each with a <column>_nan sentinel.
var ZeroFillColumns = []string{
	"bedrooms",
	"bathrooms",
	"features_floorCount",
	"features_garageSpaces",
	"features_roomCount",
}
