package models

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// OfferSearchParams uses the upstream provider's parameter names.
type OfferSearchParams struct {
	OriginLocationCode      string  `json:"originLocationCode"`
	DestinationLocationCode string  `json:"destinationLocationCode"`
	DepartureDate           string  `json:"departureDate"`
	ReturnDate              *string `json:"returnDate,omitempty"`
	Adults                  int     `json:"adults"`
}

// Values encodes the parameters as an upstream query string. The returnDate
// key is left out entirely for one-way searches.
func (p OfferSearchParams) Values() url.Values {
	v := url.Values{}
	v.Set("originLocationCode", p.OriginLocationCode)
	v.Set("destinationLocationCode", p.DestinationLocationCode)
	v.Set("departureDate", p.DepartureDate)
	if p.ReturnDate != nil && *p.ReturnDate != "" {
		v.Set("returnDate", *p.ReturnDate)
	}
	v.Set("adults", strconv.Itoa(p.Adults))
	return v
}

// FlightOffers is the provider's offer list, relayed without interpretation.
type FlightOffers = json.RawMessage
