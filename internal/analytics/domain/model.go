package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Interval selects the reporting window. The year window is bucketed by
// month, the others by day.
type Interval string

const (
	IntervalLast7Days   Interval = "last7Days"
	IntervalLast30Days  Interval = "last30Days"
	IntervalLast365Days Interval = "last365Days"
)

func (i Interval) Valid() bool {
	switch i {
	case IntervalLast7Days, IntervalLast30Days, IntervalLast365Days:
		return true
	}
	return false
}

// Days returns the window length.
func (i Interval) Days() int {
	switch i {
	case IntervalLast7Days:
		return 7
	case IntervalLast30Days:
		return 30
	case IntervalLast365Days:
		return 365
	}
	return 0
}

// ByMonth reports whether the window is bucketed by calendar month.
func (i Interval) ByMonth() bool { return i == IntervalLast365Days }

// Query scopes an analytics read. ProductID narrows to one product when
// set. Timezone names an IANA location; buckets are cut in that zone.
type Query struct {
	OwnerID   string        `json:"owner_id"`
	ProductID *snowflake.ID `json:"product_id"`
	Timezone  string        `json:"timezone"`
	Interval  Interval      `json:"interval"`
}

// DayCount is one bucket of the time series. Date is the bucket start in
// the query's timezone.
type DayCount struct {
	Date  time.Time `json:"date"`
	Views int64     `json:"views"`
}

type CountryCount struct {
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
	Views       int64  `json:"views"`
}

type GroupCount struct {
	GroupName string `json:"group_name"`
	Views     int64  `json:"views"`
}

type Repository interface {
	// ListVisitTimes returns the raw UTC visit instants in the window;
	// bucketing happens in the service.
	ListVisitTimes(ctx context.Context, db *gorm.DB, ownerID string, productID *snowflake.ID, since time.Time) ([]time.Time, error)
	CountByCountry(ctx context.Context, db *gorm.DB, ownerID string, productID *snowflake.ID, since time.Time, limit int) ([]CountryCount, error)
	// CountByGroup returns every purchasing-power group, including those
	// with zero views, ordered by group name.
	CountByGroup(ctx context.Context, db *gorm.DB, ownerID string, productID *snowflake.ID, since time.Time) ([]GroupCount, error)
}

type Service interface {
	ViewsByDay(ctx context.Context, q Query) ([]DayCount, error)
	ViewsByCountry(ctx context.Context, q Query) ([]CountryCount, error)
	ViewsByPPPGroup(ctx context.Context, q Query) ([]GroupCount, error)
}

var (
	ErrInvalidInterval = errors.New("invalid_interval")
	ErrInvalidTimezone = errors.New("invalid_timezone")
)
