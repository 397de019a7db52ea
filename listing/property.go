// Package listing decodes raw property records returned by the RentCast
// "properties" endpoints and flattens them into a frame.
package listing

import (
	"io"
	"os"

	"github.com/go-json-experiment/json"

	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/pkg/log"
)

// Property is one RentCast property record. Optional numeric fields are
// pointers so that an absent value stays distinguishable from zero.
// Members not listed here (tax assessments, history, owner) are ignored.
type Property struct {
	ID               string         `json:"id"`
	FormattedAddress string         `json:"formattedAddress"`
	AddressLine1     string         `json:"addressLine1"`
	AddressLine2     string         `json:"addressLine2"`
	City             string         `json:"city"`
	State            string         `json:"state"`
	ZipCode          string         `json:"zipCode"`
	County           string         `json:"county"`
	Latitude         *float64       `json:"latitude"`
	Longitude        *float64       `json:"longitude"`
	PropertyType     string         `json:"propertyType"`
	Bedrooms         *float64       `json:"bedrooms"`
	Bathrooms        *float64       `json:"bathrooms"`
	SquareFootage    *float64       `json:"squareFootage"`
	LotSize          *float64       `json:"lotSize"`
	YearBuilt        *float64       `json:"yearBuilt"`
	AssessorID       string         `json:"assessorID"`
	LegalDescription string         `json:"legalDescription"`
	Subdivision      string         `json:"subdivision"`
	Zoning           string         `json:"zoning"`
	LastSaleDate     string         `json:"lastSaleDate"`
	LastSalePrice    *float64       `json:"lastSalePrice"`
	OwnerOccupied    *bool          `json:"ownerOccupied"`
	Features         map[string]any `json:"features"`
}

// Load reads a JSON array of properties from path.
func Load(path string) ([]Property, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open listings %s", path)
	}
	defer file.Close()

	props, err := Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decode listings %s", path)
	}
	log.GetLoggerWithName("listing").Debug("Loaded listings",
		log.PathKey, path,
		log.SamplesKey, len(props),
	)
	return props, nil
}

// Decode parses a JSON array of properties.
func Decode(r io.Reader) ([]Property, error) {
	var props []Property
	if err := json.UnmarshalRead(r, &props); err != nil {
		return nil, errors.Wrap(err, "unmarshal properties")
	}
	return props, nil
}
