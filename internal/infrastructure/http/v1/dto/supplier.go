package dto

import (
	"time"

	"facturo/internal/domain/supplier"
)

type CreateSupplierRequest struct {
	Name    string  `json:"name" binding:"required"`
	TaxID   *string `json:"taxId"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	IBAN    *string `json:"iban"`
	BIC     *string `json:"bic"`
	RIB     *string `json:"rib"`
}

func (r *CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.NewSupplier(r.Name)
	s.TaxID = r.TaxID
	s.Email = r.Email
	s.Phone = r.Phone
	s.Address = r.Address
	s.IBAN = r.IBAN
	s.BIC = r.BIC
	s.RIB = r.RIB
	return s
}

type UpdateSupplierRequest struct {
	Name    string  `json:"name" binding:"required"`
	TaxID   *string `json:"taxId"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	IBAN    *string `json:"iban"`
	BIC     *string `json:"bic"`
	RIB     *string `json:"rib"`
}

// ApplyTo overwrites the stored record with the submitted values.
// Manual edits are authoritative, unlike the reconciliation path.
func (r *UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	s.Name = r.Name
	s.TaxID = r.TaxID
	s.Email = r.Email
	s.Phone = r.Phone
	s.Address = r.Address
	s.IBAN = r.IBAN
	s.BIC = r.BIC
	s.RIB = r.RIB
}

type SupplierResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     *string   `json:"taxId,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	IBAN      *string   `json:"iban,omitempty"`
	BIC       *string   `json:"bic,omitempty"`
	RIB       *string   `json:"rib,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromSupplier(s *supplier.Supplier) *SupplierResponse {
	return &SupplierResponse{
		ID:        s.ID.String(),
		Name:      s.Name,
		TaxID:     s.TaxID,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		IBAN:      s.IBAN,
		BIC:       s.BIC,
		RIB:       s.RIB,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func FromSuppliers(list []*supplier.Supplier) []SupplierResponse {
	out := make([]SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *FromSupplier(s))
	}
	return out
}
