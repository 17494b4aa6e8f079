package domain

import (
	"fmt"
	"strings"
	"time"
)

type City string

const (
	CityChandigarh City = "Chandigarh"
	CityMohali     City = "Mohali"
	CityZirakpur   City = "Zirakpur"
	CityPanchkula  City = "Panchkula"
	CityOther      City = "Other"
)

type PropertyType string

const (
	PropertyApartment PropertyType = "Apartment"
	PropertyVilla     PropertyType = "Villa"
	PropertyPlot      PropertyType = "Plot"
	PropertyOffice    PropertyType = "Office"
	PropertyRetail    PropertyType = "Retail"
)

type BHK string

const (
	BHKStudio BHK = "STUDIO"
	BHKOne    BHK = "ONE"
	BHKTwo    BHK = "TWO"
	BHKThree  BHK = "THREE"
	BHKFour   BHK = "FOUR"
)

type Purpose string

const (
	PurposeBuy  Purpose = "Buy"
	PurposeRent Purpose = "Rent"
)

type Timeline string

const (
	TimelineZeroToThreeM Timeline = "ZERO_TO_THREE_M"
	TimelineThreeToSixM  Timeline = "THREE_TO_SIX_M"
	TimelineMoreThanSixM Timeline = "MORE_THAN_SIX_M"
	TimelineExploring    Timeline = "EXPLORING"
)

type Source string

const (
	SourceWebsite  Source = "Website"
	SourceReferral Source = "Referral"
	SourceWalkIn   Source = "Walk_in"
	SourceCall     Source = "Call"
	SourceOther    Source = "Other"
)

type Status string

const (
	StatusNew         Status = "New"
	StatusQualified   Status = "Qualified"
	StatusContacted   Status = "Contacted"
	StatusVisited     Status = "Visited"
	StatusNegotiation Status = "Negotiation"
	StatusConverted   Status = "Converted"
	StatusDropped     Status = "Dropped"
)

// BuyerFields are the client-mutable fields of a buyer lead. System-managed
// attributes (id, owner, timestamps) live on Buyer and are never written from
// client input.
type BuyerFields struct {
	FullName     string       `json:"fullName"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	City         City         `json:"city"`
	PropertyType PropertyType `json:"propertyType"`
	BHK          BHK          `json:"bhk,omitempty"`
	Purpose      Purpose      `json:"purpose"`
	BudgetMin    *int64       `json:"budgetMin"`
	BudgetMax    *int64       `json:"budgetMax"`
	Timeline     Timeline     `json:"timeline"`
	Source       Source       `json:"source"`
	Status       Status       `json:"status"`
	Notes        string       `json:"notes"`
	Tags         []string     `json:"tags"`
}

// Buyer is the mutable record under optimistic concurrency control.
// UpdatedAt is the version token: stamped by the store on every successful
// write, monotonically advancing, never supplied by a client.
type Buyer struct {
	ID int64 `json:"id"`
	BuyerFields
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VersionToken is the canonical serialization of the version token. Callers
// echo this string back on update; the comparison is exact string equality.
func (b *Buyer) VersionToken() string {
	return FormatVersionToken(b.UpdatedAt)
}

func FormatVersionToken(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func ParseCity(input string) (City, error) {
	switch City(input) {
	case CityChandigarh, CityMohali, CityZirakpur, CityPanchkula, CityOther:
		return City(input), nil
	}
	return "", fmt.Errorf("unknown city %q", input)
}

func ParsePropertyType(input string) (PropertyType, error) {
	switch PropertyType(input) {
	case PropertyApartment, PropertyVilla, PropertyPlot, PropertyOffice, PropertyRetail:
		return PropertyType(input), nil
	}
	return "", fmt.Errorf("unknown property type %q", input)
}

// ParseBHK accepts canonical values plus the display forms used by lead
// intake forms ("0".."4", "studio"). BHK is optional; empty input is valid.
func ParseBHK(input string) (BHK, error) {
	if input == "" {
		return "", nil
	}
	switch strings.ToUpper(input) {
	case "0", "STUDIO":
		return BHKStudio, nil
	case "1", "ONE":
		return BHKOne, nil
	case "2", "TWO":
		return BHKTwo, nil
	case "3", "THREE":
		return BHKThree, nil
	case "4", "FOUR":
		return BHKFour, nil
	}
	return "", fmt.Errorf("unknown bhk %q", input)
}

// ParseTimeline accepts canonical values plus display forms ("0-3m", "3-6m",
// "6+m", "exploring"). Unrecognized input is an error, never a silent
// fallback to EXPLORING.
func ParseTimeline(input string) (Timeline, error) {
	switch strings.ToLower(input) {
	case "0-3m", "zero_to_three_m":
		return TimelineZeroToThreeM, nil
	case "3-6m", "three_to_six_m":
		return TimelineThreeToSixM, nil
	case "6+m", "more_than_six_m":
		return TimelineMoreThanSixM, nil
	case "exploring":
		return TimelineExploring, nil
	}
	return "", fmt.Errorf("unknown timeline %q", input)
}

func ParsePurpose(input string) (Purpose, error) {
	switch Purpose(input) {
	case PurposeBuy, PurposeRent:
		return Purpose(input), nil
	}
	return "", fmt.Errorf("unknown purpose %q", input)
}

func ParseSource(input string) (Source, error) {
	switch Source(input) {
	case SourceWebsite, SourceReferral, SourceWalkIn, SourceCall, SourceOther:
		return Source(input), nil
	}
	return "", fmt.Errorf("unknown source %q", input)
}

func ParseStatus(input string) (Status, error) {
	switch Status(input) {
	case StatusNew, StatusQualified, StatusContacted, StatusVisited,
		StatusNegotiation, StatusConverted, StatusDropped:
		return Status(input), nil
	}
	return "", fmt.Errorf("unknown status %q", input)
}
