package domain

import (
	"fmt"
	"math"
)

const (
	basePriceWithinCity = 800
	basePriceIntercity  = 1200
	districtFactor      = 1.3
	highFloorFactor     = 1.2
	highFloorThreshold  = 3
	priceSpread         = 300
)

// PriceRange is a non-binding estimate in SAR.
type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// String renders the range the way the form displays it.
func (p PriceRange) String() string {
	return fmt.Sprintf("%d - %d ريال", p.Min, p.Max)
}

// EstimatePrice derives the informational price range. It reports false until
// a service type is chosen.
func EstimatePrice(r LeadRecord) (PriceRange, bool) {
	var price float64
	switch r.ServiceType {
	case ServiceWithinCity:
		price = basePriceWithinCity
	case ServiceIntercity:
		price = basePriceIntercity
	default:
		return PriceRange{}, false
	}

	if r.FromDistrict != "" && r.ToDistrict != "" && r.FromDistrict != r.ToDistrict {
		price *= districtFactor
	}
	if r.FromFloor != nil && int(*r.FromFloor) > highFloorThreshold {
		price *= highFloorFactor
	}

	estimate := int(math.Round(price))
	return PriceRange{Min: estimate, Max: estimate + priceSpread}, true
}
