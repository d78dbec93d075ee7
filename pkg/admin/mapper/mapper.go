package mapper

import (
	"time"

	"delivery-scheduler-be/internal/dto"
	"delivery-scheduler-be/internal/entity"
	ierr "delivery-scheduler-be/internal/errors"
	"delivery-scheduler-be/pkg/admin/pause"
	"delivery-scheduler-be/pkg/admin/reactivation"
	"delivery-scheduler-be/pkg/delivery"
	"delivery-scheduler-be/pkg/subscription"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// FormatDate renders a calendar date in the operating timezone
func FormatDate(cal delivery.Calendar, t time.Time) string {
	return cal.Day(t).Format(time.DateOnly)
}

func formatDatePtr(cal delivery.Calendar, t *time.Time) *string {
	if t == nil {
		return nil
	}
	return lo.ToPtr(FormatDate(cal, *t))
}

// ParseDate reads a YYYY-MM-DD value as local midnight of the operating timezone
func ParseDate(cal delivery.Calendar, value string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, value, cal.Location)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHintf("Invalid date %q, expected YYYY-MM-DD", value).
			Mark(ierr.ErrValidation)
	}
	return t, nil
}

// PolicyToResponse converts entity to response DTO
func PolicyToResponse(p *entity.SchedulePolicy) dto.SchedulePolicyResponse {
	return dto.SchedulePolicyResponse{
		Category:    string(p.Category),
		GapDays:     p.GapDays,
		IsDaily:     p.IsDaily,
		Description: p.Description,
		UpdatedAt:   p.UpdatedAt,
		UpdatedBy:   p.UpdatedBy,
	}
}

func PoliciesToResponse(policies []*entity.SchedulePolicy) []dto.SchedulePolicyResponse {
	return lo.Map(policies, func(p *entity.SchedulePolicy, _ int) dto.SchedulePolicyResponse {
		return PolicyToResponse(p)
	})
}

func AuditsToResponse(audits []*entity.SchedulePolicyAudit) []dto.SchedulePolicyAuditResponse {
	return lo.Map(audits, func(a *entity.SchedulePolicyAudit, _ int) dto.SchedulePolicyAuditResponse {
		return dto.SchedulePolicyAuditResponse{
			Id:         a.Id.String(),
			Category:   string(a.Category),
			OldGapDays: a.OldGapDays,
			NewGapDays: a.NewGapDays,
			OldIsDaily: a.OldIsDaily,
			NewIsDaily: a.NewIsDaily,
			ActorId:    a.ActorId,
			Reason:     a.Reason,
			CreatedAt:  a.CreatedAt,
		}
	})
}

func PreviewToResponse(cal delivery.Calendar, policy entity.SchedulePolicy, dates []time.Time) dto.SchedulePreviewResponse {
	return dto.SchedulePreviewResponse{
		Category: string(policy.Category),
		GapDays:  policy.GapDays,
		IsDaily:  policy.IsDaily,
		Dates:    lo.Map(dates, func(d time.Time, _ int) string { return FormatDate(cal, d) }),
		Count:    len(dates),
	}
}

// BatchErrors renders per-row failures; the operator-facing hint wins over the raw message
func BatchErrors(items []pause.ItemError) []dto.BatchItemError {
	return lo.Map(items, func(item pause.ItemError, _ int) dto.BatchItemError {
		out := dto.BatchItemError{Error: batchMessage(item.Err)}
		if item.SubscriptionId != uuid.Nil {
			out.SubscriptionId = lo.ToPtr(item.SubscriptionId)
		}
		return out
	})
}

func batchMessage(err error) string {
	if err == nil {
		return ""
	}
	if hint := ierr.FirstHint(err); hint != "" {
		return hint
	}
	return err.Error()
}

func PauseResultToResponse(res *pause.Result) dto.PauseResponse {
	return dto.PauseResponse{
		PauseRecordId:             res.Record.Id,
		AffectedSubscriptionCount: res.Record.AffectedSubscriptionCount,
		ProcessedCount:            res.ProcessedCount,
		SkippedCount:              res.SkippedCount,
		FailedCount:               len(res.Errors),
		Errors:                    BatchErrors(res.Errors),
	}
}

func PauseRecordToResponse(cal delivery.Calendar, r *entity.AdminPauseRecord) dto.PauseRecordResponse {
	return dto.PauseRecordResponse{
		Id:                        r.Id,
		PauseType:                 string(r.PauseType),
		AffectedUserIds:           lo.Ternary(r.AffectedUserIds == nil, []uuid.UUID{}, r.AffectedUserIds),
		StartDate:                 FormatDate(cal, r.StartDate),
		EndDate:                   formatDatePtr(cal, r.EndDate),
		Reason:                    r.Reason,
		ActorId:                   r.ActorId,
		Status:                    string(r.Status),
		AffectedSubscriptionCount: r.AffectedSubscriptionCount,
		CompletedAt:               r.CompletedAt,
		CompletedBy:               r.CompletedBy,
		CreatedAt:                 r.CreatedAt,
	}
}

func PauseRecordsToResponse(cal delivery.Calendar, records []*entity.AdminPauseRecord) []dto.PauseRecordResponse {
	return lo.Map(records, func(r *entity.AdminPauseRecord, _ int) dto.PauseRecordResponse {
		return PauseRecordToResponse(cal, r)
	})
}

func reactivationResult(res *reactivation.Result) dto.ReactivateRecordResult {
	return dto.ReactivateRecordResult{
		PauseRecordId:    res.Record.Id,
		ReactivatedCount: res.ReactivatedCount,
		ReconciledCount:  res.ReconciledCount,
		SkippedCount:     res.SkippedCount,
		FailedCount:      len(res.Errors),
		Completed:        res.Completed,
		Errors:           BatchErrors(res.Errors),
	}
}

// ReactivationToResponse totals one or more record results into the response body.
// Completed is true only when every processed record was closed.
func ReactivationToResponse(results []*reactivation.Result, failed []reactivation.RecordError) dto.ReactivateResponse {
	resp := dto.ReactivateResponse{
		Completed:     len(results) > 0 && len(failed) == 0,
		Errors:        []dto.BatchItemError{},
		Results:       make([]dto.ReactivateRecordResult, 0, len(results)),
		FailedRecords: make([]dto.FailedRecord, 0, len(failed)),
	}
	for _, res := range results {
		item := reactivationResult(res)
		resp.ReactivatedCount += item.ReactivatedCount
		resp.ReconciledCount += item.ReconciledCount
		resp.FailedCount += item.FailedCount
		resp.Completed = resp.Completed && item.Completed
		resp.Errors = append(resp.Errors, item.Errors...)
		resp.Results = append(resp.Results, item)
	}
	for _, f := range failed {
		resp.FailedRecords = append(resp.FailedRecords, dto.FailedRecord{
			PauseRecordId: f.PauseRecordId,
			Error:         batchMessage(f.Err),
		})
	}
	return resp
}

func SubscriptionToResponse(cal delivery.Calendar, s *entity.Subscription) dto.SubscriptionResponse {
	return dto.SubscriptionResponse{
		Id:                    s.Id,
		UserId:                s.UserId,
		Category:              string(s.Category),
		Cadence:               string(s.Cadence),
		Status:                string(s.Status),
		NextDeliveryDate:      formatDatePtr(cal, s.NextDeliveryDate),
		SubscriptionStartDate: FormatDate(cal, s.SubscriptionStartDate),
		SubscriptionEndDate:   FormatDate(cal, s.SubscriptionEndDate),
		PauseDate:             s.PauseDate,
		PauseReason:           s.PauseReason,
		ReactivationDeadline:  s.ReactivationDeadline,
		AdminPauseId:          s.AdminPauseId,
		AdminPauseStart:       formatDatePtr(cal, s.AdminPauseStart),
		AdminPauseEnd:         formatDatePtr(cal, s.AdminPauseEnd),
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

func SubscriptionDetailToResponse(cal delivery.Calendar, d *subscription.Detail) dto.SubscriptionDetailResponse {
	return dto.SubscriptionDetailResponse{
		SubscriptionResponse: SubscriptionToResponse(cal, d.Subscription),
		UpcomingDeliveries:   lo.Map(d.Upcoming, func(t time.Time, _ int) string { return FormatDate(cal, t) }),
	}
}

func EligibilityToResponse(cal delivery.Calendar, e *delivery.PauseEligibility) dto.PauseEligibilityResponse {
	return dto.PauseEligibilityResponse{
		Eligible:             e.Eligible,
		Reason:               string(e.Reason),
		NextDeliveryDate:     FormatDate(cal, e.NextDeliveryDate),
		ReactivationDeadline: e.ReactivationDeadline,
	}
}
