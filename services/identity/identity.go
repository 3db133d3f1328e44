package identity

import (
	"errors"

	"event-ticketing/errs"
	contactModel "event-ticketing/models/contact"
	customerModel "event-ticketing/models/customer"
	ticketType "event-ticketing/types/ticket"

	"gorm.io/gorm"
)

// ResolveOrCreate looks up the contact for the given holder input by
// normalized email, creating it when absent. Name and phone fields are
// filled in when the existing record has them empty but the input carries
// values. A legacy customer row is mirrored in the same transaction.
func ResolveOrCreate(tx *gorm.DB, input ticketType.HolderInput) (*contactModel.Contact, *customerModel.Customer, error) {
	email := contactModel.NormalizeEmail(input.Email)
	if email == "" {
		return nil, nil, errs.Validationf("email is required")
	}

	var ct contactModel.Contact
	err := tx.Where("email = ?", email).First(&ct).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ct = contactModel.Contact{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Email:     email,
			Phone:     input.Phone,
		}
		if err := tx.Create(&ct).Error; err != nil {
			return nil, nil, err
		}
	case err != nil:
		return nil, nil, err
	default:
		if enrich(&ct, input) {
			if err := tx.Save(&ct).Error; err != nil {
				return nil, nil, err
			}
		}
	}

	cu, err := mirrorCustomer(tx, &ct)
	if err != nil {
		return nil, nil, err
	}
	return &ct, cu, nil
}

// enrich fills empty contact fields from the input. It never overwrites
// values the contact already has.
func enrich(ct *contactModel.Contact, input ticketType.HolderInput) bool {
	changed := false
	if empty(ct.FirstName) && !empty(input.FirstName) {
		ct.FirstName = input.FirstName
		changed = true
	}
	if empty(ct.LastName) && !empty(input.LastName) {
		ct.LastName = input.LastName
		changed = true
	}
	if empty(ct.Phone) && !empty(input.Phone) {
		ct.Phone = input.Phone
		changed = true
	}
	return changed
}

func empty(s *string) bool {
	return s == nil || *s == ""
}

func mirrorCustomer(tx *gorm.DB, ct *contactModel.Contact) (*customerModel.Customer, error) {
	var cu customerModel.Customer
	err := tx.Where("email = ?", ct.Email).First(&cu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cu = customerModel.Customer{
			FirstName: ct.FirstName,
			LastName:  ct.LastName,
			Email:     &ct.Email,
			Phone:     ct.Phone,
		}
		if err := tx.Create(&cu).Error; err != nil {
			return nil, err
		}
		return &cu, nil
	}
	if err != nil {
		return nil, err
	}
	return &cu, nil
}
