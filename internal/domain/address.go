package domain

import "time"

// MaxAddressesPerCustomer is the hard cap of saved delivery addresses.
const MaxAddressesPerCustomer = 10

// Address is a saved delivery address belonging to one customer.
type Address struct {
	ID           int64     `json:"id_direccion"`
	CustomerID   int64     `json:"id_cliente"`
	Alias        string    `json:"alias"`
	Street       string    `json:"calle"`
	Neighborhood string    `json:"colonia"`
	PostalCode   string    `json:"codigo_postal"`
	City         string    `json:"ciudad"`
	State        string    `json:"estado"`
	References   string    `json:"referencias,omitempty"`
	Latitude     float64   `json:"latitud"`
	Longitude    float64   `json:"longitud"`
	CreatedAt    time.Time `json:"fecha_creacion"`
}

// AddressPatch is a partial update. Nil fields are left untouched; the
// customer ID is never patchable.
type AddressPatch struct {
	Alias        *string
	Street       *string
	Neighborhood *string
	PostalCode   *string
	City         *string
	State        *string
	References   *string
	Latitude     *float64
	Longitude    *float64
}

// IsEmpty reports whether the patch changes nothing.
func (p *AddressPatch) IsEmpty() bool {
	return p.Alias == nil &&
		p.Street == nil &&
		p.Neighborhood == nil &&
		p.PostalCode == nil &&
		p.City == nil &&
		p.State == nil &&
		p.References == nil &&
		p.Latitude == nil &&
		p.Longitude == nil
}
