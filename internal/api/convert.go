package api

import "fstop/internal/analysis"

// FromRecord converts a stored analysis to its API representation.
func FromRecord(rec *analysis.Record) Analysis {
	if rec == nil {
		return Analysis{}
	}

	dto := Analysis{
		ID:            rec.ID,
		UUID:          rec.UUID,
		Filename:      rec.Filename,
		MediaType:     rec.MediaType,
		SizeBytes:     rec.SizeBytes,
		Status:        string(rec.Status),
		ExifFound:     rec.ExifFound,
		DeviceMake:    rec.DeviceMake,
		DeviceModel:   rec.DeviceModel,
		DeviceDisplay: rec.DeviceDisplay,
		Scored:        rec.Scored,
		Likelihood:    rec.Likelihood,
		Verdict:       rec.Verdict,
		Rationale:     rec.Rationale,
		ErrorMessage:  rec.ErrorMessage,
	}
	if !rec.CreatedAt.IsZero() {
		dto.CreatedAt = rec.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !rec.UpdatedAt.IsZero() {
		dto.UpdatedAt = rec.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromRecords converts a slice of stored analyses into API DTOs.
func FromRecords(recs []*analysis.Record) []Analysis {
	if len(recs) == 0 {
		return nil
	}
	out := make([]Analysis, 0, len(recs))
	for _, rec := range recs {
		out = append(out, FromRecord(rec))
	}
	return out
}
