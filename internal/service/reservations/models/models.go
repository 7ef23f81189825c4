package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")

	// ErrSearchTooLong возвращается, когда строка поиска длиннее допустимого
	ErrSearchTooLong = errors.New("search term too long")
)

// Request модели

// ListUserReservationsRequest запрос списка бронирований пользователя
type ListUserReservationsRequest struct {
	UserID int64
	Page   int
	Limit  int
	Search string
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListUserReservationsRequest) ToDomainFilter(statuses []domain.ReservationStatus, pendingOrder bool) (domain.UserReservationsFilter, error) {
	search := strings.TrimSpace(r.Search)
	if len(search) > domain.MaxSearchLength {
		return domain.UserReservationsFilter{}, ErrSearchTooLong
	}

	return domain.UserReservationsFilter{
		UserID:       r.UserID,
		Statuses:     statuses,
		Search:       search,
		PendingOrder: pendingOrder,
		Pagination:   domain.NewPagination(r.Page, r.Limit, domain.DefaultReservationsLimit),
	}, nil
}

// ListParishReservationsRequest административный запрос бронирований прихода
type ListParishReservationsRequest struct {
	ParishID  int64
	Status    *string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Page      int
	Limit     int
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListParishReservationsRequest) ToDomainFilter() (domain.ParishReservationsFilter, error) {
	filter := domain.ParishReservationsFilter{
		ParishID:   r.ParishID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Search:     strings.TrimSpace(r.Search),
		Pagination: domain.NewPagination(r.Page, r.Limit, domain.DefaultReservationsLimit),
	}

	if len(filter.Search) > domain.MaxSearchLength {
		return filter, ErrSearchTooLong
	}

	if r.Status != nil {
		status, err := domain.ParseReservationStatus(*r.Status)
		if err != nil {
			return filter, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
		}
		filter.Status = &status
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return filter, errors.New("startDate must not be after endDate")
	}

	return filter, nil
}

// AdminUpdateRequest частичное обновление бронирования администратором
type AdminUpdateRequest struct {
	Status     *string
	EventDate  *time.Time
	EventTime  *types.TimeString
	PaidAmount *float64
}

// ToDomainPatch конвертирует request в типизированный патч
func (r *AdminUpdateRequest) ToDomainPatch() (domain.ReservationPatch, error) {
	var patch domain.ReservationPatch

	if r.Status != nil {
		status, err := domain.ParseReservationStatus(*r.Status)
		if err != nil {
			return patch, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
		}
		patch.Status = &status
	}

	if r.EventDate != nil {
		date := domain.DateOnly(*r.EventDate)
		patch.EventDate = &date
	}

	if r.EventTime != nil {
		if err := r.EventTime.Validate(); err != nil {
			return patch, fmt.Errorf("invalid eventTime: %w", err)
		}
		at := *r.EventTime
		patch.EventTime = &at
	}

	if r.PaidAmount != nil {
		if *r.PaidAmount < 0 {
			return patch, errors.New("paidAmount must not be negative")
		}
		amount := *r.PaidAmount
		patch.PaidAmount = &amount
	}

	return patch, nil
}

// Response модели

// ReservationResponse данные бронирования
type ReservationResponse struct {
	ID                  int64   `json:"id"`
	UserID              int64   `json:"userId"`
	EventVariantID      int64   `json:"eventVariantId"`
	ChapelID            int64   `json:"chapelId"`
	ParishID            int64   `json:"parishId"`
	EventName           string  `json:"eventName"`
	VariantName         string  `json:"variantName"`
	ChapelName          string  `json:"chapelName"`
	BeneficiaryFullName string  `json:"beneficiaryFullName"`
	EventDate           string  `json:"eventDate"` // "2026-10-19"
	EventTime           string  `json:"eventTime"` // "09:00"
	EventTimeDisplay    string  `json:"eventTimeDisplay"`
	DurationMinutes     int     `json:"durationMinutes"`
	Status              string  `json:"status"`
	Price               float64 `json:"price"`
	PaidAmount          float64 `json:"paidAmount"`
	PaymentStatus       string  `json:"paymentStatus"`
	RescheduleDate      *string `json:"rescheduleDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RequirementResponse требование бронирования
type RequirementResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"` // BASE | CHAPEL
	Completed   bool   `json:"completed"`
}

// MentionResponse упоминание бронирования
type MentionResponse struct {
	ID            int64  `json:"id"`
	MentionTypeID int64  `json:"mentionTypeId"`
	MentionName   string `json:"mentionName"`
}

// ReservationDetailsResponse бронирование с требованиями и упоминаниями
type ReservationDetailsResponse struct {
	ReservationResponse
	Requirements []RequirementResponse `json:"requirements"`
	Mentions     []MentionResponse     `json:"mentions"`
}

// PageMetaResponse метаданные пагинации
type PageMetaResponse struct {
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
	PerPage      int `json:"perPage"`
}

// ReservationListResponse страница бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	Meta         PageMetaResponse      `json:"meta"`
}

// CancelResponse результат отмены
type CancelResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	resp := &ReservationResponse{
		ID:                  r.ID,
		UserID:              r.UserID,
		EventVariantID:      r.EventVariantID,
		ChapelID:            r.ChapelID,
		ParishID:            r.ParishID,
		EventName:           r.EventName,
		VariantName:         r.VariantName,
		ChapelName:          r.ChapelName,
		BeneficiaryFullName: r.BeneficiaryFullName,
		EventDate:           r.EventDate.Format(domain.DateFormat),
		EventTime:           r.EventTime.String(),
		EventTimeDisplay:    r.EventTime.Display(),
		DurationMinutes:     r.DurationMinutes,
		Status:              string(r.Status),
		Price:               r.VariantPrice,
		PaidAmount:          r.PaidAmount,
		PaymentStatus:       string(r.PaymentStatus()),
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}

	if r.RescheduleDate != nil {
		date := r.RescheduleDate.Format(domain.DateFormat)
		resp.RescheduleDate = &date
	}

	return resp
}

// FromDomainReservationList конвертирует страницу domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation, meta domain.PageMeta) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
		Meta: PageMetaResponse{
			TotalRecords: meta.TotalRecords,
			TotalPages:   meta.TotalPages,
			CurrentPage:  meta.CurrentPage,
			PerPage:      meta.PerPage,
		},
	}

	for _, r := range reservations {
		if item := FromDomainReservation(r); item != nil {
			resp.Reservations = append(resp.Reservations, *item)
		}
	}

	return resp
}

// FromDomainDetails собирает детали бронирования
func FromDomainDetails(
	r *domain.Reservation,
	requirements []domain.ReservationRequirement,
	mentions []domain.ReservationMention,
) *ReservationDetailsResponse {
	resp := &ReservationDetailsResponse{
		ReservationResponse: *FromDomainReservation(r),
		Requirements:        make([]RequirementResponse, 0, len(requirements)),
		Mentions:            make([]MentionResponse, 0, len(mentions)),
	}

	for _, req := range requirements {
		source := domain.RequirementChapel
		if req.BaseRequirementID != nil {
			source = domain.RequirementBase
		}
		resp.Requirements = append(resp.Requirements, RequirementResponse{
			ID:          req.ID,
			Name:        req.Name,
			Description: req.Description,
			Source:      string(source),
			Completed:   req.Completed,
		})
	}

	for _, m := range mentions {
		resp.Mentions = append(resp.Mentions, MentionResponse{
			ID:            m.ID,
			MentionTypeID: m.MentionTypeID,
			MentionName:   m.MentionName,
		})
	}

	return resp
}
