package model

// CustomerProfile holds the customer data attached to a user account.
// A user owns at most one profile.
type CustomerProfile struct {
	ID          string `json:"id"`
	OwnerUserID string `json:"ownerUserId"`
	NationalID  string `json:"nationalId"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

// ProfileRequest is the payload used to complete or update a profile.
type ProfileRequest struct {
	NationalID string `json:"nationalId" validate:"required,max=20"`
	Phone      string `json:"phone" validate:"required,max=20"`
	Address    string `json:"address" validate:"required,max=255"`
}

// Supplier is a vendor referenced by purchase orders.
type Supplier struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TaxID   string `json:"taxId"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}
