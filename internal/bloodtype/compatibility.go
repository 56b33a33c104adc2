// Package bloodtype holds the ABO/Rh donor to recipient compatibility table.
package bloodtype

import (
	"strings"
	"sync"

	"github.com/YusovID/donor-match-service/internal/apperrors"
	"github.com/YusovID/donor-match-service/internal/domain"
)

var all = []domain.BloodType{
	domain.BloodTypeONegative,
	domain.BloodTypeOPositive,
	domain.BloodTypeANegative,
	domain.BloodTypeAPositive,
	domain.BloodTypeBNegative,
	domain.BloodTypeBPositive,
	domain.BloodTypeABNegative,
	domain.BloodTypeABPositive,
}

// donatesTo maps a donor type to the recipient types it can give to.
var donatesTo = map[domain.BloodType][]domain.BloodType{
	domain.BloodTypeONegative:  all,
	domain.BloodTypeOPositive:  {domain.BloodTypeOPositive, domain.BloodTypeAPositive, domain.BloodTypeBPositive, domain.BloodTypeABPositive},
	domain.BloodTypeANegative:  {domain.BloodTypeANegative, domain.BloodTypeAPositive, domain.BloodTypeABNegative, domain.BloodTypeABPositive},
	domain.BloodTypeAPositive:  {domain.BloodTypeAPositive, domain.BloodTypeABPositive},
	domain.BloodTypeBNegative:  {domain.BloodTypeBNegative, domain.BloodTypeBPositive, domain.BloodTypeABNegative, domain.BloodTypeABPositive},
	domain.BloodTypeBPositive:  {domain.BloodTypeBPositive, domain.BloodTypeABPositive},
	domain.BloodTypeABNegative: {domain.BloodTypeABNegative, domain.BloodTypeABPositive},
	domain.BloodTypeABPositive: {domain.BloodTypeABPositive},
}

var (
	inverseOnce  sync.Once
	receivesFrom map[domain.BloodType][]domain.BloodType
)

// All returns the eight blood types in a fixed order.
func All() []domain.BloodType {
	out := make([]domain.BloodType, len(all))
	copy(out, all)

	return out
}

// Parse accepts the canonical spelling ("AB+") in any letter case.
func Parse(s string) (domain.BloodType, error) {
	bt := domain.BloodType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := donatesTo[bt]; !ok {
		return "", &apperrors.UnknownBloodTypeError{Value: s}
	}

	return bt, nil
}

func CanDonateTo(donor, recipient domain.BloodType) (bool, error) {
	recipients, ok := donatesTo[donor]
	if !ok {
		return false, &apperrors.UnknownBloodTypeError{Value: string(donor)}
	}

	if _, ok := donatesTo[recipient]; !ok {
		return false, &apperrors.UnknownBloodTypeError{Value: string(recipient)}
	}

	for _, r := range recipients {
		if r == recipient {
			return true, nil
		}
	}

	return false, nil
}

// CompatibleDonorsFor returns every donor type that can give to recipient.
// The inverse table is built once from donatesTo and shared process-wide.
func CompatibleDonorsFor(recipient domain.BloodType) ([]domain.BloodType, error) {
	if _, ok := donatesTo[recipient]; !ok {
		return nil, &apperrors.UnknownBloodTypeError{Value: string(recipient)}
	}

	inverseOnce.Do(buildInverse)

	donors := receivesFrom[recipient]
	out := make([]domain.BloodType, len(donors))
	copy(out, donors)

	return out, nil
}

func buildInverse() {
	receivesFrom = make(map[domain.BloodType][]domain.BloodType, len(all))

	for _, donor := range all {
		for _, recipient := range donatesTo[donor] {
			receivesFrom[recipient] = append(receivesFrom[recipient], donor)
		}
	}
}
