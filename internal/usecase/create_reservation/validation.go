package create_reservation

import (
	"fmt"
	"strings"

	"github.com/m04kA/ParishReservationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userId must be positive", ErrInvalidInput)
	}

	if req.EventVariantID <= 0 {
		return fmt.Errorf("%w: eventVariantId must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: eventDate is required", ErrInvalidInput)
	}

	if req.Time.IsZero() {
		return fmt.Errorf("%w: eventTime is required", ErrInvalidInput)
	}

	if err := req.Time.Validate(); err != nil {
		return fmt.Errorf("%w: invalid eventTime format: %v", ErrInvalidInput, err)
	}

	if req.BeneficiaryFullName != nil && len(*req.BeneficiaryFullName) > domain.MaxBeneficiaryNameLength {
		return fmt.Errorf("%w: beneficiaryFullName is longer than %d characters", ErrInvalidInput, domain.MaxBeneficiaryNameLength)
	}

	for i, m := range req.Mentions {
		if m.MentionTypeID <= 0 {
			return fmt.Errorf("%w: mentions[%d].mentionTypeId must be positive", ErrInvalidInput, i)
		}
		name := strings.TrimSpace(m.MentionName)
		if name == "" {
			return fmt.Errorf("%w: mentions[%d].mentionName is required", ErrInvalidInput, i)
		}
		if len(name) > domain.MaxMentionNameLength {
			return fmt.Errorf("%w: mentions[%d].mentionName is longer than %d characters", ErrInvalidInput, i, domain.MaxMentionNameLength)
		}
	}

	return nil
}
