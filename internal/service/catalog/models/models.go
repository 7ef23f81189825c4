package models

import "github.com/m04kA/ParishReservationService/internal/domain"

// FormInfoResponse данные для формы бронирования варианта события
type FormInfoResponse struct {
	EventVariantID  int64                 `json:"eventVariantId"`
	ChapelID        int64                 `json:"chapelId"`
	ChapelName      string                `json:"chapelName"`
	ParishID        int64                 `json:"parishId"`
	ParishName      string                `json:"parishName"`
	EventName       string                `json:"eventName"`
	VariantName     string                `json:"variantName"`
	Description     string                `json:"description,omitempty"`
	Price           float64               `json:"price"`
	MaxCapacity     int                   `json:"maxCapacity"`
	DurationMinutes int                   `json:"durationMinutes"`
	PrimaryColor    *string               `json:"primaryColor,omitempty"`
	SecondaryColor  *string               `json:"secondaryColor,omitempty"`
	Requirements    []RequirementResponse `json:"requirements"`
}

// RequirementResponse требование, которое будет скопировано в бронирование
type RequirementResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

// FromDomainVariant конвертирует вариант события и его требования в DTO
func FromDomainVariant(v *domain.EventVariant, requirements []*domain.RequirementSource) *FormInfoResponse {
	resp := &FormInfoResponse{
		EventVariantID:  v.ID,
		ChapelID:        v.ChapelID,
		ChapelName:      v.ChapelName,
		ParishID:        v.ParishID,
		ParishName:      v.ParishName,
		EventName:       v.EventName,
		VariantName:     v.Name,
		Description:     v.Description,
		Price:           v.Price,
		MaxCapacity:     v.MaxCapacity,
		DurationMinutes: v.DurationMinutes,
		PrimaryColor:    v.PrimaryColor,
		SecondaryColor:  v.SecondaryColor,
		Requirements:    make([]RequirementResponse, 0, len(requirements)),
	}

	for _, r := range requirements {
		resp.Requirements = append(resp.Requirements, RequirementResponse{
			Name:        r.Name,
			Description: r.Description,
			Source:      string(r.Kind),
		})
	}
	return resp
}
