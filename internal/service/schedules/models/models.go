package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

// Request модели

// GeneralBlock блок недельного расписания
type GeneralBlock struct {
	DayOfWeek int              `json:"dayOfWeek" yaml:"dayOfWeek"`
	StartTime types.TimeString `json:"startTime" yaml:"startTime"`
	EndTime   types.TimeString `json:"endTime" yaml:"endTime"`
}

// Validate проверяет день недели и интервал блока
func (b GeneralBlock) Validate() error {
	if b.DayOfWeek < 0 || b.DayOfWeek > 6 {
		return fmt.Errorf("dayOfWeek must be between 0 and 6, got %d", b.DayOfWeek)
	}
	if err := b.StartTime.Validate(); err != nil {
		return fmt.Errorf("invalid startTime: %w", err)
	}
	if err := b.EndTime.Validate(); err != nil {
		return fmt.Errorf("invalid endTime: %w", err)
	}
	if !b.StartTime.IsBefore(b.EndTime) {
		return fmt.Errorf("endTime %s must be after startTime %s", b.EndTime, b.StartTime)
	}
	return nil
}

// ReplaceGeneralRequest полная замена недельного расписания часовни
type ReplaceGeneralRequest struct {
	ParishID int64
	ChapelID int64
	Blocks   []GeneralBlock
}

// ToDomainSchedules проверяет блоки и конвертирует их в domain модели
func (r *ReplaceGeneralRequest) ToDomainSchedules() ([]*domain.GeneralSchedule, error) {
	schedules := make([]*domain.GeneralSchedule, 0, len(r.Blocks))
	seen := make(map[string]struct{}, len(r.Blocks))

	for i, b := range r.Blocks {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}

		key := fmt.Sprintf("%d@%s", b.DayOfWeek, b.StartTime)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("block %d: duplicate start %s on day %d", i, b.StartTime, b.DayOfWeek)
		}
		seen[key] = struct{}{}

		schedules = append(schedules, &domain.GeneralSchedule{
			ChapelID:  r.ChapelID,
			DayOfWeek: b.DayOfWeek,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Active:    true,
		})
	}

	return schedules, nil
}

// SpecificRequest создание или изменение исключения
type SpecificRequest struct {
	ParishID      int64
	ChapelID      int64
	Date          time.Time
	ExceptionType string
	StartTime     *types.TimeString
	EndTime       *types.TimeString
	Reason        string
}

// ToDomainSpecific проверяет исключение и конвертирует его в domain модель
// У CLOSED время не хранится, у OPEN оба времени обязательны
func (r *SpecificRequest) ToDomainSpecific() (*domain.SpecificSchedule, error) {
	if r.Date.IsZero() {
		return nil, errors.New("date is required")
	}

	exceptionType := domain.ExceptionType(strings.ToUpper(strings.TrimSpace(r.ExceptionType)))
	if !exceptionType.IsValid() {
		return nil, fmt.Errorf("exceptionType must be OPEN or CLOSED, got %q", r.ExceptionType)
	}

	reason := strings.TrimSpace(r.Reason)
	if len(reason) > domain.MaxExceptionReasonLength {
		return nil, fmt.Errorf("reason cannot exceed %d characters", domain.MaxExceptionReasonLength)
	}

	s := &domain.SpecificSchedule{
		ChapelID:      r.ChapelID,
		Date:          domain.DateOnly(r.Date),
		ExceptionType: exceptionType,
		Reason:        reason,
		Active:        true,
	}

	if exceptionType == domain.ExceptionOpen {
		if r.StartTime == nil || r.EndTime == nil {
			return nil, errors.New("an OPEN exception requires startTime and endTime")
		}
		block := GeneralBlock{StartTime: *r.StartTime, EndTime: *r.EndTime}
		if err := block.Validate(); err != nil {
			return nil, err
		}
		s.StartTime = *r.StartTime
		s.EndTime = *r.EndTime
	}

	return s, nil
}

// ListSpecificRequest список исключений часовни
type ListSpecificRequest struct {
	ParishID      int64
	ChapelID      int64
	ExceptionType *string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	Limit         int
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListSpecificRequest) ToDomainFilter() (domain.SpecificScheduleFilter, error) {
	filter := domain.SpecificScheduleFilter{
		ChapelID:   r.ChapelID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Pagination: domain.NewPagination(r.Page, r.Limit, domain.DefaultSpecificSchedLimit),
	}

	if r.ExceptionType != nil {
		t := domain.ExceptionType(strings.ToUpper(strings.TrimSpace(*r.ExceptionType)))
		if !t.IsValid() {
			return filter, fmt.Errorf("exceptionType must be OPEN or CLOSED, got %q", *r.ExceptionType)
		}
		filter.ExceptionType = &t
	}

	if r.StartDate != nil && r.EndDate != nil && r.StartDate.After(*r.EndDate) {
		return filter, errors.New("startDate must not be after endDate")
	}

	return filter, nil
}

// Response модели

// GeneralScheduleResponse блок недельного расписания
type GeneralScheduleResponse struct {
	ID        int64  `json:"id"`
	ChapelID  int64  `json:"chapelId"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// GeneralScheduleListResponse недельное расписание часовни
type GeneralScheduleListResponse struct {
	Schedules []GeneralScheduleResponse `json:"schedules"`
}

// SpecificScheduleResponse исключение из расписания
type SpecificScheduleResponse struct {
	ID            int64     `json:"id"`
	ChapelID      int64     `json:"chapelId"`
	Date          string    `json:"date"`
	ExceptionType string    `json:"exceptionType"`
	StartTime     *string   `json:"startTime,omitempty"`
	EndTime       *string   `json:"endTime,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PageMetaResponse метаданные пагинации
type PageMetaResponse struct {
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
	PerPage      int `json:"perPage"`
}

// SpecificScheduleListResponse страница исключений
type SpecificScheduleListResponse struct {
	Schedules []SpecificScheduleResponse `json:"schedules"`
	Meta      PageMetaResponse           `json:"meta"`
}

// Методы конвертации

// FromDomainGeneralList конвертирует недельное расписание в DTO
func FromDomainGeneralList(schedules []*domain.GeneralSchedule) *GeneralScheduleListResponse {
	resp := &GeneralScheduleListResponse{Schedules: make([]GeneralScheduleResponse, 0, len(schedules))}
	for _, g := range schedules {
		resp.Schedules = append(resp.Schedules, GeneralScheduleResponse{
			ID:        g.ID,
			ChapelID:  g.ChapelID,
			DayOfWeek: g.DayOfWeek,
			StartTime: g.StartTime.String(),
			EndTime:   g.EndTime.String(),
		})
	}
	return resp
}

// FromDomainSpecific конвертирует исключение в DTO
func FromDomainSpecific(s *domain.SpecificSchedule) *SpecificScheduleResponse {
	if s == nil {
		return nil
	}

	resp := &SpecificScheduleResponse{
		ID:            s.ID,
		ChapelID:      s.ChapelID,
		Date:          s.Date.Format(domain.DateFormat),
		ExceptionType: string(s.ExceptionType),
		Reason:        s.Reason,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}

	if !s.IsClosed() && !s.StartTime.IsZero() {
		start, end := s.StartTime.String(), s.EndTime.String()
		resp.StartTime = &start
		resp.EndTime = &end
	}

	return resp
}

// FromDomainSpecificList конвертирует страницу исключений в DTO
func FromDomainSpecificList(schedules []*domain.SpecificSchedule, meta domain.PageMeta) *SpecificScheduleListResponse {
	resp := &SpecificScheduleListResponse{
		Schedules: make([]SpecificScheduleResponse, 0, len(schedules)),
		Meta: PageMetaResponse{
			TotalRecords: meta.TotalRecords,
			TotalPages:   meta.TotalPages,
			CurrentPage:  meta.CurrentPage,
			PerPage:      meta.PerPage,
		},
	}
	for _, s := range schedules {
		resp.Schedules = append(resp.Schedules, *FromDomainSpecific(s))
	}
	return resp
}
