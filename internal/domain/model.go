package domain

import "time"

// Audit carries the bookkeeping fields shared by stored resources.
// Timestamps are kept in UTC at millisecond precision, the finest resolution
// every supported store round-trips unchanged.
type Audit struct {
	CreatedOn time.Time `gorm:"column:created_on;not null" json:"created_on"`
	UpdatedOn time.Time `gorm:"column:updated_on;not null;index" json:"updated_on"`
	Version   int64     `gorm:"column:version;not null" json:"version"`
}

// NewAudit returns the audit fields of a resource created at now, at version 1.
func NewAudit(now time.Time) Audit {
	now = Timestamp(now)
	return Audit{CreatedOn: now, UpdatedOn: now, Version: 1}
}

// Touch records a mutation at now: UpdatedOn advances and Version is bumped by one.
// UpdatedOn never moves backwards, even if now is earlier than the previous value.
func (a *Audit) Touch(now time.Time) {
	now = Timestamp(now)
	if !now.After(a.UpdatedOn) {
		now = a.UpdatedOn.Add(time.Millisecond)
	}
	a.UpdatedOn = now
	a.Version++
}

// Timestamp normalizes t to UTC at millisecond precision.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
