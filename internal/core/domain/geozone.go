package domain

import (
	"strings"
	"time"
)

// Address holds the structured postal fields of a geozone.
type Address struct {
	Line    string `json:"line,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
}

// String joins the non-empty fields with ", ".
func (a Address) String() string {
	var parts []string
	for _, p := range []string{a.Line, a.City, a.State, a.ZipCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Geozone is a reusable named region in the catalog.
type Geozone struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	FinalAddress  string    `json:"final_address,omitempty"`
	Geometry      Geometry  `json:"geometry"`
	Address       Address   `json:"address"`
	ContactNumber string    `json:"contact_number,omitempty"`
	IsPublic      bool      `json:"is_public"`
	IsPrivate     bool      `json:"is_private"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// GeozoneInput is the creation payload for a geozone.
type GeozoneInput struct {
	Name          string   `json:"name"`
	Geometry      Geometry `json:"geometry"`
	Address       Address  `json:"address"`
	ContactNumber string   `json:"contact_number,omitempty"`
	IsPublic      bool     `json:"is_public"`
	IsPrivate     bool     `json:"is_private"`
	CreatedBy     string   `json:"created_by"`
}

// Validate checks the payload before it reaches storage.
func (in GeozoneInput) Validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name is required")
	}
	if strings.TrimSpace(in.CreatedBy) == "" {
		verr.Add("created_by is required")
	}
	if in.IsPublic && in.IsPrivate {
		verr.Add("is_public and is_private are mutually exclusive")
	}
	if err := in.Geometry.Validate(); err != nil {
		verr.Add(err.Error())
	}
	return verr.OrNil()
}

// ToGeozone builds the record stored for this input.
func (in GeozoneInput) ToGeozone() Geozone {
	geom := in.Geometry.Clone()
	if geom.Kind == KindPolygon {
		geom.Vertices = geom.ClosedRing()
	}
	return Geozone{
		Name:          strings.TrimSpace(in.Name),
		FinalAddress:  in.Address.String(),
		Geometry:      geom,
		Address:       in.Address,
		ContactNumber: in.ContactNumber,
		IsPublic:      in.IsPublic,
		IsPrivate:     in.IsPrivate,
		CreatedBy:     in.CreatedBy,
	}
}
